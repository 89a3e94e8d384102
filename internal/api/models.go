package api

const Version = "0.1.0"

type HealthResponse struct {
	OK      bool   `json:"ok" description:"Always true when the service answers"`
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"API version"`
}
