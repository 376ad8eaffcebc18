// Package transport provides the default Doer used by the admin REST client.
//
// Standard URLs go through net/http. URLs with the lambda scheme are converted
// to API Gateway v2 proxy events and sent to an AWS Lambda function instead:
//
//	lambda://<function-name>/<path>?<query-params>
//
// which lets a client built with Scheme "lambda" talk to an admin API mock
// deployed as a function. The function must answer with an API Gateway v2
// proxy response:
//
//	{"statusCode": 200, "headers": {"Content-Type": "application/json"}, "body": "{}"}
package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// LambdaScheme routes a request to AWS Lambda.
const LambdaScheme = "lambda"

// LambdaInvoker is the subset of the Lambda API the client needs.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Client routes requests to Lambda or HTTP based on the URL scheme.
// AWS configuration is only loaded when the first lambda:// request is made.
type Client struct {
	httpClient *http.Client

	once    sync.Once
	invoker LambdaInvoker
	loadErr error
}

// Option configures a Client.
type Option func(*Client)

// WithLambdaInvoker sets the Lambda API used for lambda:// URLs, skipping AWS config loading.
func WithLambdaInvoker(invoker LambdaInvoker) Option {
	return func(c *Client) {
		c.invoker = invoker
	}
}

// NewClient creates a client sending plain HTTP through httpClient.
// A nil httpClient uses http.DefaultClient.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{httpClient: httpClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClient = sync.OnceValue(func() *Client {
	return NewClient(http.DefaultClient)
})

// DefaultClient returns the process-wide client used when no transport is configured.
func DefaultClient() *Client {
	return defaultClient()
}

// Do performs the request, routing to Lambda or HTTP based on the URL scheme.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme == LambdaScheme {
		return c.doLambda(req)
	}
	return c.httpClient.Do(req)
}

func (c *Client) lambdaInvoker(ctx context.Context) (LambdaInvoker, error) {
	c.once.Do(func() {
		if c.invoker != nil {
			return
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			c.loadErr = fmt.Errorf("loading AWS config: %w", err)
			return
		}
		c.invoker = lambda.NewFromConfig(cfg)
	})
	return c.invoker, c.loadErr
}

func (c *Client) doLambda(req *http.Request) (*http.Response, error) {
	functionName := req.URL.Host
	if functionName == "" {
		return nil, fmt.Errorf("lambda URL missing function name")
	}

	ctx := req.Context()
	invoker, err := c.lambdaInvoker(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := encodeEvent(req)
	if err != nil {
		return nil, err
	}

	output, err := invoker.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoking Lambda function %s: %w", functionName, err)
	}
	if output.FunctionError != nil {
		return nil, fmt.Errorf("Lambda function error: %s", *output.FunctionError)
	}

	return decodeResponse(req, output.Payload)
}
