package interpreter

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loft/interpreter-go/pkg/runtime"
)

const webRequestTimeout = 30 * time.Second

// webBuiltin is gated behind the "net" feature; every request checks the
// network capability against the target host before any I/O happens.
func webBuiltin() *runtime.BuiltinStruct {
	b := runtime.NewBuiltinStruct("web")
	b.AddMethod("get", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		rawURL, err := oneStringArg("web.get", args)
		if err != nil {
			return nil, err
		}
		return webRequest(ctx, "web.get", http.MethodGet, rawURL, "")
	})
	b.AddMethod("post", func(ctx *runtime.NativeCallContext, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, runtime.NewError("web.post: wrong number of arguments")
		}
		rawURL, err := wantString("web.post", args[0])
		if err != nil {
			return nil, err
		}
		var body string
		if len(args) == 2 {
			bodyStr, err := wantString("web.post", args[1])
			if err != nil {
				return nil, err
			}
			body = bodyStr.Val
		}
		return webRequest(ctx, "web.post", http.MethodPost, rawURL.Val, body)
	})
	return b
}

// webRequest performs one blocking HTTP exchange and wraps the response in a
// resolved promise, mirroring the async surface the language exposes.
func webRequest(ctx *runtime.NativeCallContext, name, method, rawURL, body string) (runtime.Value, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, runtime.NewError(name + ": invalid url '" + rawURL + "'")
	}
	if err := ctx.Permissions.Require(runtime.CapabilityNetwork, parsed.Host); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, rawURL, reader)
	if err != nil {
		return nil, runtime.NewError(name + ": " + err.Error())
	}
	client := &http.Client{Timeout: webRequestTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, runtime.NewError(name + ": request failed: " + err.Error())
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, runtime.NewError(name + ": reading response body: " + err.Error())
	}

	response := &runtime.StructValue{
		Name: "HttpResponse",
		Fields: map[string]runtime.Value{
			"status": runtime.NumberFromInt(int64(resp.StatusCode)),
			"body":   runtime.StringValue{Val: string(data)},
		},
	}
	return runtime.ResolvedPromise(response), nil
}
