package customHttpClient

import (
	"net/http"
	"sync"

	"github.com/akolanti/DocQA/internal/config"
)

var customTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
	ForceAttemptHTTP2:   true,
}

var once sync.Once
var pooledClient *http.Client

// Client returns the process wide http client shared by the llm and embedding
// providers so they reuse connections. Timeouts come from the request context.
func Client() *http.Client {
	once.Do(func() {
		pooledClient = &http.Client{Transport: customTransport}
	})
	return pooledClient
}
