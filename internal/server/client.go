package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

// Client calls a remote cstkit.v1.Evaluator
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// EvalResult is the decoded Evaluate response
type EvalResult struct {
	RunID     string
	EntryRule string
	Value     float64
	Tokens    int
	Tree      string
}

// TokenInfo is one token of a Tokenize response
type TokenInfo struct {
	Kind   string
	Image  string
	Offset int
	Line   int
	Column int
}

// Dial creates a client for target. Extra options (such as a bufconn
// dialer) are appended to the defaults.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(ClientRequestIDInterceptor()),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, ckerror.Wrapf(err, "failed to create client for %s", target).WithCode(ckerror.CodeConfig)
	}
	return &Client{conn: conn, timeout: 30 * time.Second}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, in map[string]interface{}) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, ckerror.Wrap(err, "encode request").WithCode(ckerror.CodeInvalidInput)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, out); err != nil {
		return nil, FromStatus(err)
	}
	return out, nil
}

// Evaluate evaluates text remotely; an empty entry uses the server default
func (c *Client) Evaluate(ctx context.Context, text, entry string, includeTree bool) (*EvalResult, error) {
	out, err := c.invoke(ctx, MethodEvaluate, map[string]interface{}{
		"text":         text,
		"entry_rule":   entry,
		"include_tree": includeTree,
	})
	if err != nil {
		return nil, err
	}
	f := out.GetFields()
	return &EvalResult{
		RunID:     f["run_id"].GetStringValue(),
		EntryRule: f["entry_rule"].GetStringValue(),
		Value:     f["value"].GetNumberValue(),
		Tokens:    int(f["tokens"].GetNumberValue()),
		Tree:      f["sexpr"].GetStringValue(),
	}, nil
}

// Tokenize tokenizes text remotely
func (c *Client) Tokenize(ctx context.Context, text string) ([]TokenInfo, error) {
	out, err := c.invoke(ctx, MethodTokenize, map[string]interface{}{"text": text})
	if err != nil {
		return nil, err
	}

	values := out.GetFields()["tokens"].GetListValue().GetValues()
	tokens := make([]TokenInfo, len(values))
	for i, v := range values {
		f := v.GetStructValue().GetFields()
		tokens[i] = TokenInfo{
			Kind:   f["kind"].GetStringValue(),
			Image:  f["image"].GetStringValue(),
			Offset: int(f["offset"].GetNumberValue()),
			Line:   int(f["line"].GetNumberValue()),
			Column: int(f["column"].GetNumberValue()),
		}
	}
	return tokens, nil
}

// Describe fetches the server's grammar report as a Struct
func (c *Client) Describe(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodDescribe, map[string]interface{}{})
}

// Healthy reports whether the evaluator service is serving
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return false, FromStatus(err)
	}
	return resp.Status == healthpb.HealthCheckResponse_SERVING, nil
}

// FromStatus restores a coded error from a gRPC status carrying the
// evaluator's Struct detail. Other errors keep their status text.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	code := ckerror.CodeUnknown
	var runID string
	for _, d := range st.Details() {
		if s, isStruct := d.(*structpb.Struct); isStruct {
			code = ckerror.Code(s.GetFields()["code"].GetStringValue())
			runID = s.GetFields()["run_id"].GetStringValue()
		}
	}
	restored := ckerror.New(st.Message()).WithCode(code).WithDetail("grpc_code", st.Code().String())
	if runID != "" {
		restored = restored.WithDetail("run_id", runID)
	}
	return restored
}
