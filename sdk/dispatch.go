package sdk

import (
	"context"
	"net/http"
)

const (
	// accessTokenHeader carries the API access token
	accessTokenHeader = "x-access-token"
	// userTokenHeader carries the user token on JSON requests
	userTokenHeader = "user-token"
)

// dispatcher sends one API request: resolve the token, send, wrap the envelope.
type dispatcher struct {
	transport *httpTransport
	tokens    *tokenProvider
}

func newDispatcher(transport *httpTransport, tokens *tokenProvider) *dispatcher {
	return &dispatcher{transport: transport, tokens: tokens}
}

// get sends params in the query string.
func (d *dispatcher) get(ctx context.Context, path string, params Params) (*Response, error) {
	return d.send(ctx, &outgoing{
		method:   http.MethodGet,
		path:     path,
		params:   params,
		encoding: encodeQuery,
	})
}

// post sends params as a form body.
func (d *dispatcher) post(ctx context.Context, path string, params Params) (*Response, error) {
	return d.send(ctx, &outgoing{
		method:   http.MethodPost,
		path:     path,
		params:   params,
		encoding: encodeForm,
	})
}

// postJSON sends params as a JSON object. A user_token param travels in
// the user-token header instead of the body.
func (d *dispatcher) postJSON(ctx context.Context, path string, params Params) (*Response, error) {
	out := &outgoing{
		method:   http.MethodPost,
		path:     path,
		params:   params,
		encoding: encodeJSON,
	}
	if userToken, ok := params.Get("user_token"); ok {
		out.params = params.Without("user_token")
		out.headers = map[string]string{userTokenHeader: userToken}
	}
	return d.send(ctx, out)
}

func (d *dispatcher) send(ctx context.Context, out *outgoing) (*Response, error) {
	token, ok, err := d.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		if out.headers == nil {
			out.headers = make(map[string]string, 1)
		}
		out.headers[accessTokenHeader] = token
	}

	in, err := d.transport.roundTrip(ctx, out)
	if err != nil {
		return nil, err
	}

	raw, err := decodeBody(in)
	if err != nil {
		return nil, err
	}
	return newResponse(raw, in.status, in.header), nil
}
