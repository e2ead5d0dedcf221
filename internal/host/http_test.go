package host

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/warpdl/warpjs/internal/clock"
	"github.com/warpdl/warpjs/pkg/logger"
)

// runServer evaluates src, which must listen on 127.0.0.1:0, runs the host
// on the wall clock and returns the base URL.
func runServer(t *testing.T, cfg *Config, src string) (*Host, string) {
	t.Helper()
	h, err := New(cfg, &Dependencies{
		Clock:  clock.NewReal(),
		Logger: logger.NewMockLogger(),
		Stdout: io.Discard,
		Stderr: io.Discard,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := h.Eval("server.js", src); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	listeners := h.Status().Listeners
	if len(listeners) != 1 {
		t.Fatalf("listeners = %v", listeners)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("Run did not return")
		}
	})
	return h, "http://" + listeners[0]
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestHTTPRoundTrip(t *testing.T) {
	_, base := runServer(t, nil, `
		var srv = http.createServer(function (req, res) {
			res.statusCode = 201;
			res.setHeader("X-Path", req.path);
			res.end("hello " + req.method + " " + req.headers["x-test"]);
		});
		srv.listen("127.0.0.1:0");
	`)
	req, _ := http.NewRequest(http.MethodGet, base+"/greet?x=1", nil)
	req.Header.Set("X-Test", "yes")
	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Path"); got != "/greet" {
		t.Fatalf("X-Path = %q", got)
	}
	if string(body) != "hello GET yes" {
		t.Fatalf("body = %q", body)
	}
}

func TestHTTPRequestsAreServedInOrder(t *testing.T) {
	_, base := runServer(t, nil, `
		var count = 0;
		http.createServer(function (req, res) {
			count++;
			res.end(String(count));
		}).listen("127.0.0.1:0");
	`)
	for i := 1; i <= 3; i++ {
		_, body := get(t, base+"/")
		if want := string(rune('0' + i)); body != want {
			t.Fatalf("request %d body = %q, want %q", i, body, want)
		}
	}
}

func TestHTTPEndTwiceThrows(t *testing.T) {
	_, base := runServer(t, nil, `
		http.createServer(function (req, res) {
			res.end("first");
			var code;
			try { res.end("second"); } catch (e) { code = e.code; }
			if (code !== "ERR_RESPONSE_ALREADY_SENT") throw new Error("missing error: " + code);
		}).listen("127.0.0.1:0");
	`)
	resp, body := get(t, base+"/")
	if resp.StatusCode != http.StatusOK || body != "first" {
		t.Fatalf("status=%d body=%q", resp.StatusCode, body)
	}
}

func TestHTTPUncaughtHandlerErrorAnswers500(t *testing.T) {
	h, base := runServer(t, nil, `
		var calls = 0;
		http.createServer(function (req, res) {
			calls++;
			if (req.path === "/boom") throw new Error("handler failed");
			res.end("ok");
		}).listen("127.0.0.1:0");
	`)
	resp, _ := get(t, base+"/boom")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	resp, body := get(t, base+"/fine")
	if resp.StatusCode != http.StatusOK || body != "ok" {
		t.Fatalf("after error: status=%d body=%q", resp.StatusCode, body)
	}
	if got := h.Status().UncaughtErrors; got != 1 {
		t.Fatalf("UncaughtErrors = %d", got)
	}
}

func TestHTTPDeferredEnd(t *testing.T) {
	_, base := runServer(t, nil, `
		http.createServer(function (req, res) {
			setTimeout(function () {
				res.writeHead(202, { "Content-Type": "application/json" });
				res.end(JSON.stringify({ later: true }));
			}, 10);
		}).listen("127.0.0.1:0");
	`)
	resp, body := get(t, base+"/")
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}
	if body != `{"later":true}` {
		t.Fatalf("body = %q", body)
	}
}

func TestHTTPResponseTimeout(t *testing.T) {
	_, base := runServer(t, &Config{ResponseTimeout: 50 * time.Millisecond}, `
		http.createServer(function (req, res) {}).listen("127.0.0.1:0");
	`)
	resp, _ := get(t, base+"/")
	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", resp.StatusCode)
	}
}

func TestHTTPInvalidHeaderThrows(t *testing.T) {
	_, base := runServer(t, nil, `
		http.createServer(function (req, res) {
			var code;
			try { res.setHeader("bad header", "x"); } catch (e) { code = e.code; }
			res.end(code);
		}).listen("127.0.0.1:0");
	`)
	_, body := get(t, base+"/")
	if body != CodeInvalidHTTPToken {
		t.Fatalf("body = %q", body)
	}
}

func TestHTTPListenCallbackAndAddress(t *testing.T) {
	h, _ := runServer(t, nil, `
		var port = 0;
		var srv = http.createServer();
		srv.on("request", function (req, res) { res.end(); });
		srv.listen("127.0.0.1:0", function () { port = srv.address().port; });
	`)
	deadline := time.Now().Add(5 * time.Second)
	for h.Status().Turns < 2 {
		if time.Now().After(deadline) {
			t.Fatal("listen callback did not run")
		}
		time.Sleep(5 * time.Millisecond)
	}
	listener := h.Status().Listeners[0]
	if !strings.HasPrefix(listener, "127.0.0.1:") {
		t.Fatalf("listener = %q", listener)
	}
}

func TestHTTPRequestWinsTieWithTimer(t *testing.T) {
	th := newTestHost(t, nil)
	th.eval(t, `
		var order = [];
		http.createServer(function (req, res) {
			order.push("request");
			res.end();
		}).listen("127.0.0.1:0");
		setTimeout(function () { order.push("timer"); }, 0);
	`)
	base := "http://" + th.Status().Listeners[0]

	result := make(chan int, 1)
	go func() {
		resp, err := (&http.Client{Timeout: 5 * time.Second}).Get(base + "/")
		if err != nil {
			result <- 0
			return
		}
		resp.Body.Close()
		result <- resp.StatusCode
	}()
	deadline := time.Now().Add(5 * time.Second)
	for th.requests.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("request never queued")
		}
		time.Sleep(time.Millisecond)
	}

	if n := th.RunReady(); n != 2 {
		t.Fatalf("ran %d turns, want 2", n)
	}
	th.eval(t, `var joined = order.join(",");`)
	if got := th.str("joined"); got != "request,timer" {
		t.Fatalf("order = %q", got)
	}
	if status := <-result; status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
}

func TestHTTPNoHandlerAnswers503(t *testing.T) {
	_, base := runServer(t, nil, `http.createServer().listen("127.0.0.1:0");`)
	resp, _ := get(t, base+"/")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestHTTPServerCloseEndsRun(t *testing.T) {
	h, err := New(nil, &Dependencies{Logger: logger.NewNopLogger(), Stdout: io.Discard, Stderr: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	err = h.RunScript(context.Background(), "close.js", `
		var srv = http.createServer(function (req, res) { res.end(); });
		srv.listen("127.0.0.1:0", function () {
			setTimeout(function () { srv.close(); }, 10);
		});
	`)
	if err != nil {
		t.Fatalf("RunScript: %v", err)
	}
	if st := h.Status(); len(st.Listeners) != 0 || st.State != "shutdown" {
		t.Fatalf("status = %+v", st)
	}
}

func TestHTTPCloseInsideHandlerStillEnds(t *testing.T) {
	h, base := runServer(t, nil, `
		var srv = http.createServer(function (req, res) {
			srv.close();
			res.end("bye");
		});
		srv.listen("127.0.0.1:0");
	`)
	resp, body := get(t, base+"/")
	if resp.StatusCode != http.StatusOK || body != "bye" {
		t.Fatalf("got %d %q, want 200 \"bye\"", resp.StatusCode, body)
	}
	deadline := time.Now().Add(5 * time.Second)
	for h.Status().State != "shutdown" {
		if time.Now().After(deadline) {
			t.Fatalf("host did not exit after close, state %s", h.Status().State)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if n := h.Status().UncaughtErrors; n != 0 {
		t.Fatalf("uncaught errors = %d, want 0", n)
	}
}
