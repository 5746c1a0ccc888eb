package constants

import "os"

func GetDataDir() string {
	path := os.Getenv("SIGHTREAD_DATA_PATH")
	if path != "" {
		return path
	}
	return "./data"
}

func GetDynamoEndpoint() string {
	endpoint := os.Getenv("SIGHTREAD_DYNAMO_ENDPOINT")
	if endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}

func GetServeAddr() string {
	addr := os.Getenv("SIGHTREAD_SERVE_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

const SessionTable = "sightread-sessions"

const SessionFileExt = ".session"

// SMF resolution for exported exercises.
const TicksPerQuarter = 960
