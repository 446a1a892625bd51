package collect

import (
	"net/url"
	"regexp"
	"time"

	"github.com/teandr/crawler/collector"
)

// RuleTree 采集规则树
type RuleTree struct {
	// Root 根节点-执行入口
	Root func() ([]*Request, error)
	// Trunk 规则哈希表
	Trunk map[string]*Rule
}

type Rule struct {
	ItemFields []string
	ParseFunc  func(*CrawlerContext) (ParseResult, error)
}

type CrawlerContext struct {
	Body []byte
	Req  *Request
}

type RuleMode struct {
	Name       string   `json:"name"`
	ItemFields []string `json:"item_fields"`
	ParseFunc  string   `json:"parse_script"`
}

func (c *CrawlerContext) GetRule(ruleName string) *Rule {
	rule, _ := c.Req.Task.GetRule(ruleName)
	return rule
}

// Output 将解析出的数据包装成存储单元
func (c *CrawlerContext) Output(data any) *collector.DataCell {
	res := &collector.DataCell{
		Data: map[string]any{},
	}
	res.Data["Task"] = c.Req.Task.Name
	res.Data["Rule"] = c.Req.RuleName
	res.Data["Data"] = data
	res.Data["Url"] = c.Req.Url
	res.Data["Time"] = time.Now().Format("2006-01-02 15:04:05")
	return res
}

// ParseJSReg 动态规则中按正则提取链接，相对链接按当前请求地址补全
func (c *CrawlerContext) ParseJSReg(name, reg string) ParseResult {
	re := regexp.MustCompile(reg)
	matches := re.FindAllSubmatch(c.Body, -1)
	result := ParseResult{}
	base, baseErr := url.Parse(c.Req.Url)
	for _, m := range matches {
		u := string(m[1])
		if ref, err := url.Parse(u); err == nil && baseErr == nil {
			u = base.ResolveReference(ref).String()
		}
		result.Requests = append(result.Requests, &Request{
			Method:   "GET",
			Task:     c.Req.Task,
			Url:      u,
			Depth:    c.Req.Depth + 1,
			RuleName: name,
		})
	}

	return result
}

// OutputJS 动态规则中按正则匹配输出当前页面
func (c *CrawlerContext) OutputJS(reg string) ParseResult {
	re := regexp.MustCompile(reg)
	ok := re.Match(c.Body)
	if !ok {
		return ParseResult{
			Items: []any{},
		}
	}

	return ParseResult{
		Items: []any{c.Req.Url},
	}
}
