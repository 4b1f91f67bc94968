package http

import "net/http"

type authTransport struct {
	scheme    string
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.token != "" {
		if t.scheme != "" {
			reqCopy.Header.Set("Authorization", t.scheme+" "+t.token)
		} else {
			reqCopy.Header.Set("Authorization", t.token)
		}
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sets a bearer Authorization header on every request
func WithAuthToken(token string) HttpOpts {
	return WithAuthScheme("Bearer", token)
}

// WithAuthScheme sets "Authorization: <scheme> <token>" on every request.
// An empty scheme sends the raw token.
func WithAuthScheme(scheme, token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			scheme:    scheme,
			token:     token,
			transport: rt,
		}
	})
}

type headerTransport struct {
	key       string
	value     string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.value == "" || req.Header.Get(t.key) != "" {
		return t.transport.RoundTrip(req)
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set(t.key, t.value)

	return t.transport.RoundTrip(reqCopy)
}

// WithUserAgent sets the User-Agent header unless the request already has one
func WithUserAgent(userAgent string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			key:       "User-Agent",
			value:     userAgent,
			transport: rt,
		}
	})
}
