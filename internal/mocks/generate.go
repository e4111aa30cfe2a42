package mocks

//go:generate mockery --name Client --srcpkg github.com/aevon-lab/rollbar-metrics/internal/resolver --output ./resolver --outpkg resolvermocks --with-expecter
//go:generate mockery --name MetricsClient --srcpkg github.com/aevon-lab/rollbar-metrics/internal/report --output ./report --outpkg reportmocks --with-expecter
