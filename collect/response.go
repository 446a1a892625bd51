package collect

import (
	"bytes"
	"net/http"

	"github.com/PuerkitoBio/goquery"
)

// Response 一次请求的结果
// StatusCode为0表示请求在传输层失败，没有收到HTTP响应
type Response struct {
	Request    *Request
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte

	dropped    bool
	dropReason string
}

// Drop 将响应标记为终止，携带原因，之后不再有钩子或解析逻辑处理它
func (r *Response) Drop(reason string) {
	r.dropped = true
	r.dropReason = reason
}

func (r *Response) Dropped() bool {
	return r.dropped
}

func (r *Response) DropReason() string {
	return r.dropReason
}

func (r *Response) Text() string {
	return string(r.Body)
}

// HTMLDocument 将响应体解析为goquery文档
func (r *Response) HTMLDocument() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
}
