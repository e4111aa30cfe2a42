package postgres

// nullableInt maps an absent integer field to SQL NULL.
func nullableInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// nullableString maps an absent string field to SQL NULL.
func nullableString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
