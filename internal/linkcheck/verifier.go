package linkcheck

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/learnmap-backend/internal/observability"
	"github.com/yungbote/learnmap-backend/internal/pkg/httpx"
	"github.com/yungbote/learnmap-backend/internal/platform/logger"
)

const (
	DefaultConcurrency  = 10
	DefaultTimeout      = 5 * time.Second
	DefaultMaxRedirects = 6
	DefaultUserAgent    = "LearnmapLinkCheck/1.0 (+https://learnmap.app)"
)

type Options struct {
	Concurrency       int
	Timeout           time.Duration
	MaxRedirects      int
	UserAgent         string
	BlockPrivateHosts bool
}

// Outcome is the result of probing one URL. HTTPStatus is zero when no
// response was received.
type Outcome struct {
	URL        string `json:"url"`
	Reachable  bool   `json:"reachable"`
	HTTPStatus int    `json:"httpStatus,omitempty"`
	Method     string `json:"-"`
}

type Verifier struct {
	log     *logger.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
	client  *http.Client
	guard   *hostGuard
	opts    Options
}

func New(log *logger.Logger, metrics *observability.Metrics, opts Options) *Verifier {
	v := newVerifier(log, metrics, opts)
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   v.opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: v.opts.Timeout,
	}
	v.client = &http.Client{Transport: tr, CheckRedirect: v.checkRedirect}
	return v
}

// NewWithHTTPClient is intended for tests. The redirect policy is installed
// on the given client unless it already has one.
func NewWithHTTPClient(log *logger.Logger, metrics *observability.Metrics, opts Options, client *http.Client) *Verifier {
	v := newVerifier(log, metrics, opts)
	if client == nil {
		client = &http.Client{}
	}
	if client.CheckRedirect == nil {
		client.CheckRedirect = v.checkRedirect
	}
	v.client = client
	return v
}

func newVerifier(log *logger.Logger, metrics *observability.Metrics, opts Options) *Verifier {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if log == nil {
		log = logger.NewNop()
	}
	v := &Verifier{
		log:     log.With("service", "LinkVerifier"),
		metrics: metrics,
		tracer:  observability.Tracer("learnmap/linkcheck"),
		opts:    opts,
	}
	if opts.BlockPrivateHosts {
		v.guard = newHostGuard()
	}
	return v
}

func (v *Verifier) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= v.opts.MaxRedirects {
		return fmt.Errorf("too many redirects")
	}
	if req == nil || req.URL == nil {
		return fmt.Errorf("redirect missing url")
	}
	if v.guard != nil && !v.guard.allowed(req.Context(), req.URL.String()) {
		return fmt.Errorf("redirect blocked: %s", req.URL.Host)
	}
	return nil
}

// VerifyAll probes urls with the configured concurrency. The result has one
// outcome per input, in input order.
func (v *Verifier) VerifyAll(ctx context.Context, urls []string) []Outcome {
	return v.verify(ctx, urls, v.opts.Concurrency)
}

// Verify reports reachability per input URL, probing at most concurrency
// URLs at a time.
func (v *Verifier) Verify(ctx context.Context, urls []string, concurrency int) []bool {
	outcomes := v.verify(ctx, urls, concurrency)
	out := make([]bool, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Reachable
	}
	return out
}

func (v *Verifier) verify(ctx context.Context, urls []string, concurrency int) []Outcome {
	out := make([]Outcome, len(urls))
	for i, u := range urls {
		out[i] = Outcome{URL: u}
	}
	if len(urls) == 0 {
		return out
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	workers := min(concurrency, len(urls))

	ctx, span := v.tracer.Start(ctx, "linkcheck.verify", trace.WithAttributes(
		attribute.Int("linkcheck.urls", len(urls)),
		attribute.Int("linkcheck.workers", workers),
	))
	defer span.End()
	start := time.Now()

	jobs := make(chan int)
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for i := range jobs {
				out[i] = v.Probe(ctx, urls[i])
			}
			return nil
		})
	}

feed:
	for i := range urls {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	_ = g.Wait()

	reachable := 0
	for _, o := range out {
		if o.Reachable {
			reachable++
		}
	}
	span.SetAttributes(attribute.Int("linkcheck.reachable", reachable))
	if ctx.Err() != nil {
		span.SetStatus(codes.Error, "cancelled")
	}
	v.log.Debug("links verified",
		"urls", len(urls),
		"reachable", reachable,
		"workers", workers,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out
}

// Probe checks one URL: HEAD first, then a single GET when HEAD failed in
// transport or the server refused the method. Errors are folded into an
// unreachable outcome.
func (v *Verifier) Probe(ctx context.Context, rawURL string) Outcome {
	out := Outcome{URL: rawURL}
	start := time.Now()
	ctx, span := v.tracer.Start(ctx, "linkcheck.probe", trace.WithAttributes(attribute.String("url.full", rawURL)))
	defer func() {
		span.SetAttributes(
			attribute.String("http.request.method", out.Method),
			attribute.Int("http.response.status_code", out.HTTPStatus),
			attribute.Bool("linkcheck.reachable", out.Reachable),
		)
		span.End()
		v.metrics.ObserveProbe(out.Method, out.Reachable, time.Since(start))
	}()

	if v.guard != nil && !v.guard.allowed(ctx, rawURL) {
		out.Method = "guard"
		return out
	}

	out.Method = http.MethodHead
	status, err := v.request(ctx, http.MethodHead, rawURL)
	if (err != nil && ctx.Err() == nil) || httpx.IsMethodRejected(status) {
		out.Method = http.MethodGet
		status, err = v.request(ctx, http.MethodGet, rawURL)
	}
	out.HTTPStatus = status
	out.Reachable = err == nil && httpx.IsReachableStatus(status)
	return out
}

func (v *Verifier) request(ctx context.Context, method, rawURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, v.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", v.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
