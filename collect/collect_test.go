package collect

import (
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBrowserFetchStatusCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("<html><title>ok</title></html>"))
		case "/broken":
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("try later"))
		}
	}))
	defer srv.Close()

	f := BrowserFetch{Timeout: 3 * time.Second}

	resp, err := f.Get(&Request{Url: srv.URL + "/ok", Method: "GET"})
	assert.Nil(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Text(), "ok")

	// 错误状态码不是传输失败，同样返回响应
	resp, err = f.Get(&Request{Url: srv.URL + "/broken", Method: "GET"})
	assert.Nil(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "try later", resp.Text())
}

func TestBrowserFetchGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("<html><body>压缩内容</body></html>"))
		gz.Close()
	}))
	defer srv.Close()

	f := BrowserFetch{Timeout: 3 * time.Second}
	resp, err := f.Get(&Request{Url: srv.URL, Method: "GET"})
	assert.Nil(t, err)
	assert.Contains(t, resp.Text(), "压缩内容")
}

func TestBrowserFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := BrowserFetch{Timeout: 20 * time.Millisecond}
	resp, err := f.Get(&Request{Url: srv.URL, Method: "GET"})
	assert.NotNil(t, err)
	assert.Nil(t, resp)
}

func TestBrowserFetchCookieAndMethod(t *testing.T) {
	var gotCookie, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotMethod = r.Method
	}))
	defer srv.Close()

	f := BrowserFetch{Timeout: 3 * time.Second}
	task := NewTask(WithCookie("session=abc"))
	_, err := f.Get(&Request{Url: srv.URL, Task: task})
	assert.Nil(t, err)
	assert.Equal(t, "session=abc", gotCookie)
	// Method为空默认GET
	assert.Equal(t, http.MethodGet, gotMethod)
}

func TestBrowserFetchMaxBodySize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer srv.Close()

	f := BrowserFetch{Timeout: 3 * time.Second, MaxBodySize: 1024}
	resp, err := f.Get(&Request{Url: srv.URL, Method: "GET"})
	assert.Nil(t, err)
	assert.Equal(t, 1024, len(resp.Body))
}

func TestResponseHTMLDocument(t *testing.T) {
	resp := &Response{
		Body: []byte(`<html><body><div class="quote"><span class="text">hello</span></div></body></html>`),
	}
	doc, err := resp.HTMLDocument()
	assert.Nil(t, err)
	assert.Equal(t, "hello", doc.Find("div.quote span.text").Text())
}
