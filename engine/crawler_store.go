package engine

import (
	"fmt"

	"github.com/robertkrimen/otto"
	"github.com/teandr/crawler/collect"
	"github.com/teandr/crawler/parse/quotes"
)

func init() {
	Store.Add(quotes.QuotesTask)
	Store.AddJSTask(quotes.QuotesJSTask)
}

// Store 全局爬虫任务实例
var Store = &CrawlerStore{
	list: []*collect.Task{},
	hash: map[string]*collect.Task{},
}

type CrawlerStore struct {
	list []*collect.Task
	hash map[string]*collect.Task
}

func (c *CrawlerStore) Add(task *collect.Task) {
	c.hash[task.Name] = task
	c.list = append(c.list, task)
}

func (c *CrawlerStore) Get(name string) (*collect.Task, bool) {
	task, ok := c.hash[name]
	return task, ok
}

// GetFields 已注册任务中某条规则声明的条目字段列表
func GetFields(taskName, ruleName string) []string {
	task, ok := Store.Get(taskName)
	if !ok {
		return nil
	}
	return task.ItemFields(ruleName)
}

// AddJSTask 动态规则任务，Root与各规则脚本由otto解释执行。
// 脚本的返回值是动态的，导出时逐一检查类型而不是直接断言
func (c *CrawlerStore) AddJSTask(m *collect.TaskMode) {
	task := &collect.Task{
		Options: m.Options,
	}

	task.Rule.Root = func() ([]*collect.Request, error) {
		vm := otto.New()
		vm.Set("AddJSReqs", AddJSReqs)
		vm.Set("AddJSReq", AddJSReq)
		v, err := vm.Eval(m.Root)
		if err != nil {
			return nil, fmt.Errorf("eval root script of task %s failed:%w", task.Name, err)
		}
		e, err := v.Export()
		if err != nil {
			return nil, err
		}
		reqs, ok := e.([]*collect.Request)
		if !ok {
			return nil, fmt.Errorf("root script of task %s returned %T, want requests", task.Name, e)
		}
		return reqs, nil
	}

	task.Rule.Trunk = make(map[string]*collect.Rule, len(m.Rules))
	for _, r := range m.Rules {
		script := r.ParseFunc
		task.Rule.Trunk[r.Name] = &collect.Rule{
			ItemFields: r.ItemFields,
			ParseFunc: func(ctx *collect.CrawlerContext) (collect.ParseResult, error) {
				vm := otto.New()
				vm.Set("ctx", ctx)
				v, err := vm.Eval(script)
				if err != nil {
					return collect.ParseResult{}, fmt.Errorf("eval rule script failed:%w", err)
				}
				e, err := v.Export()
				if err != nil {
					return collect.ParseResult{}, err
				}
				if e == nil {
					return collect.ParseResult{}, nil
				}
				result, ok := e.(collect.ParseResult)
				if !ok {
					return collect.ParseResult{}, fmt.Errorf("rule script returned %T, want parse result", e)
				}
				return result, nil
			},
		}
	}

	c.Add(task)
}

// jsToRequest JS对象转为请求，Url缺失或不是字符串时返回nil
func jsToRequest(jreq map[string]any) *collect.Request {
	u, ok := jreq["Url"].(string)
	if !ok {
		return nil
	}
	req := &collect.Request{Url: u}
	req.RuleName, _ = jreq["RuleName"].(string)
	req.Method, _ = jreq["Method"].(string)
	req.Priority, _ = jreq["Priority"].(int)
	return req
}

// AddJSReqs 动态规则脚本中批量添加请求
func AddJSReqs(jreqs []map[string]any) []*collect.Request {
	reqs := make([]*collect.Request, 0, len(jreqs))
	for _, v := range jreqs {
		req := jsToRequest(v)
		if req == nil {
			return nil
		}
		reqs = append(reqs, req)
	}

	return reqs
}

// AddJSReq 动态规则脚本中添加单个请求
func AddJSReq(jreq map[string]any) []*collect.Request {
	req := jsToRequest(jreq)
	if req == nil {
		return nil
	}
	return []*collect.Request{req}
}
