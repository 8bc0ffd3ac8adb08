package transport

import (
	"net/url"
	"strconv"
	"time"
)

// BuildURI builds the socket URI for c at the given time. The port is left
// out when it is the default for the scheme.
func BuildURI(c Config, now time.Time) string {
	scheme := "ws"
	defaultPort := 80
	if c.Secure {
		scheme = "wss"
		defaultPort = 443
	}

	host := c.Host
	if host == "" {
		hostname := c.Hostname
		if hostname == "" {
			hostname = DefaultHostname
		}
		host = hostname
		if c.Port != 0 && c.Port != defaultPort {
			host += ":" + strconv.Itoa(c.Port)
		}
	}

	query := url.Values{}
	for k, vs := range c.Query {
		query[k] = append([]string(nil), vs...)
	}
	if c.TimestampRequests {
		param := c.TimestampParam
		if param == "" {
			param = DefaultTimestampParam
		}
		query.Set(param, strconv.FormatInt(now.UnixMilli(), 10))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     host,
		Path:     c.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// URI returns the connection URI. With TimestampRequests the timestamp is
// taken at call time, so the result may differ from the URI dialed.
func (t *Transport) URI() string {
	return BuildURI(t.config, time.Now())
}
