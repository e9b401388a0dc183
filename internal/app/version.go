package app

const ServiceName = "agency-service"

// Set via -ldflags during build:
//
//	go build -ldflags="-X 'agency-service/internal/app.Version=1.0.0'"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
