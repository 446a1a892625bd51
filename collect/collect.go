package collect

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/teandr/crawler/proxy"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"go.uber.org/zap"
)

// Fetcher 执行请求
// 错误状态码（4xx/5xx）同样返回Response，交给响应钩子决定去留，
// 只有传输层失败才返回error
type Fetcher interface {
	Get(*Request) (*Response, error)
}

type BaseFetch struct {
}

func (BaseFetch) Get(req *Request) (*Response, error) {
	resp, err := http.Get(req.Url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	bodyReader := bufio.NewReader(resp.Body)
	e := DetermineEncoding(bodyReader)
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())
	body, err := io.ReadAll(utf8Reader)
	if err != nil {
		return nil, err
	}

	return &Response{
		Request:    req,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

type BrowserFetch struct {
	Timeout time.Duration
	Proxy   proxy.ProxyFunc
	// MaxBodySize 响应体上限，0表示采用默认10MB
	MaxBodySize int64
}

func (b BrowserFetch) Get(req *Request) (*Response, error) {
	client := &http.Client{
		Timeout: b.Timeout,
	}
	// 设置代理服务
	if b.Proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = b.Proxy
		client.Transport = transport
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	request, err := http.NewRequest(method, req.Url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request failed:%w", err)
	}
	if req.Task != nil && len(req.Task.Cookie) > 0 {
		request.Header.Set("Cookie", req.Task.Cookie)
	}
	request.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/117.0")
	request.Header.Set("Accept-Encoding", "gzip, deflate, br")
	resp, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := b.readBody(resp)
	if err != nil {
		return nil, err
	}

	return &Response{
		Request:    req,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

// readBody 按Content-Encoding解压并统一转换为utf8
func (b BrowserFetch) readBody(resp *http.Response) ([]byte, error) {
	maxSize := b.MaxBodySize
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	reader := io.Reader(resp.Body)
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip decode failed:%w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(reader)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(reader)
	}
	bodyReader := bufio.NewReader(io.LimitReader(reader, maxSize))
	e := DetermineEncoding(bodyReader)
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	return io.ReadAll(utf8Reader)
}

func DetermineEncoding(r *bufio.Reader) encoding.Encoding {
	// 短响应体Peek会返回EOF，已读到的字节仍可用于探测
	peek, err := r.Peek(1024)
	if err != nil && len(peek) == 0 {
		zap.L().Warn("determine encoding failed", zap.Error(err))
		return unicode.UTF8
	}
	e, _, _ := charset.DetermineEncoding(peek, "")
	return e
}
