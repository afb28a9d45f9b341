package dispatcher

import (
	"crypto/tls"
	"net"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
)

type HTTPPool struct {
	clients []*fasthttp.Client
	index   atomic.Uint64
}

type DialFunc func(addr string) (net.Conn, error)

// NewHTTPPool builds size keep-alive clients. dial may be nil.
func NewHTTPPool(size int, timeout time.Duration, dial DialFunc) *HTTPPool {
	if size <= 0 {
		size = 1
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ClientSessionCache: tls.NewLRUClientSessionCache(32),
	}

	clients := make([]*fasthttp.Client, size)
	for i := range clients {
		c := &fasthttp.Client{
			Name:                "go-warden (https://github.com/bwmarrin/discordgo, v0.28.1)",
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: 1 << 20,
			// Discord PATCH calls are not idempotent.
			MaxIdemponentCallAttempts: 1,
			TLSConfig:                 tlsConfig,
		}
		if dial != nil {
			c.Dial = fasthttp.DialFunc(dial)
		}
		clients[i] = c
	}

	return &HTTPPool{clients: clients}
}

func (hp *HTTPPool) GetClient() *fasthttp.Client {
	n := hp.index.Add(1)
	return hp.clients[int(n%uint64(len(hp.clients)))]
}

func (hp *HTTPPool) Size() int {
	return len(hp.clients)
}
