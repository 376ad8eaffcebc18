package transport

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

const eventSourceName = "adminrest"

// toEvent converts an http.Request to an API Gateway v2 HTTP proxy event.
// The request body is consumed.
func toEvent(req *http.Request) (*events.APIGatewayV2HTTPRequest, error) {
	var body string
	var isBase64Encoded bool

	if req.Body != nil && req.Body != http.NoBody {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		_ = req.Body.Close()

		if utf8.Valid(raw) {
			body = string(raw)
		} else {
			body = base64.StdEncoding.EncodeToString(raw)
			isBase64Encoded = true
		}
	}

	headers := make(map[string]string, len(req.Header)+1)
	for key, values := range req.Header {
		headers[strings.ToLower(key)] = strings.Join(values, ",")
	}
	if req.Host != "" {
		headers["host"] = req.Host
	}

	queryParams := make(map[string]string)
	for key, values := range req.URL.Query() {
		queryParams[key] = strings.Join(values, ",")
	}

	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	routeKey := req.Method + " " + path
	now := time.Now()

	return &events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RouteKey:              routeKey,
		RawPath:               path,
		RawQueryString:        req.URL.RawQuery,
		Headers:               headers,
		QueryStringParameters: queryParams,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			APIID:        "lambda-adapter",
			DomainName:   req.URL.Host,
			DomainPrefix: req.URL.Host,
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    req.Method,
				Path:      path,
				Protocol:  "HTTP/1.1",
				SourceIP:  "127.0.0.1",
				UserAgent: req.Header.Get("User-Agent"),
			},
			RequestID: eventSourceName + "-" + uuid.NewString(),
			RouteKey:  routeKey,
			Stage:     "$default",
			Time:      now.Format("02/Jan/2006:15:04:05 -0700"),
			TimeEpoch: now.UnixMilli(),
		},
		Body:            body,
		IsBase64Encoded: isBase64Encoded,
	}, nil
}

func encodeEvent(req *http.Request) ([]byte, error) {
	event, err := toEvent(req)
	if err != nil {
		return nil, fmt.Errorf("converting request to Lambda event: %w", err)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshaling Lambda event: %w", err)
	}
	return payload, nil
}

// decodeResponse converts a Lambda proxy response to an http.Response.
func decodeResponse(req *http.Request, payload []byte) (*http.Response, error) {
	var lambdaResp events.APIGatewayV2HTTPResponse
	if err := json.Unmarshal(payload, &lambdaResp); err != nil {
		return nil, fmt.Errorf("parsing Lambda response: %w", err)
	}

	status := lambdaResp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	resp := &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     make(http.Header),
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Request:    req,
	}

	for key, value := range lambdaResp.Headers {
		resp.Header.Set(key, value)
	}
	for key, values := range lambdaResp.MultiValueHeaders {
		for _, value := range values {
			resp.Header.Add(key, value)
		}
	}
	for _, cookie := range lambdaResp.Cookies {
		resp.Header.Add("Set-Cookie", cookie)
	}

	body := []byte(lambdaResp.Body)
	if lambdaResp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(lambdaResp.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 Lambda body: %w", err)
		}
		body = decoded
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))

	return resp, nil
}
