package docker

// Transport executes actions against one docker daemon. A fresh client is
// opened per call and closed when done; the daemon address comes from the
// environment unless Host pins it.
type Transport struct {
	Host string
}

func New(host string) *Transport {
	return &Transport{Host: host}
}
