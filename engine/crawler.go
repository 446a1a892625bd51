package engine

import (
	"context"
	"time"

	"github.com/teandr/crawler/collect"
	"github.com/teandr/crawler/collector"
	"github.com/teandr/crawler/middleware"
	"go.uber.org/zap"
)

type Crawler struct {
	out      chan collect.ParseResult
	workerCh chan *collect.Request
	options
}

func NewCrawler(opts ...Option) *Crawler {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	c := &Crawler{
		out:      make(chan collect.ParseResult),
		workerCh: make(chan *collect.Request),
	}
	c.options = options
	if c.scheduler == nil {
		c.scheduler = NewSchedule(WithScheduleLogger(c.Logger))
	}
	if c.pipeline == nil {
		c.pipeline = middleware.NewPipeline(middleware.WithLogger(c.Logger))
	}

	return c
}

// Run 启动派发循环和worker，阻塞在结果处理上直至ctx结束
func (c *Crawler) Run(ctx context.Context) {
	go c.Schedule(ctx)
	for i := 0; i < c.WorkCount; i++ {
		go c.CreateWork(ctx)
	}
	c.HandleResult(ctx)
}

// Schedule 注入种子请求，然后轮询调度器把到期的请求派发给worker
func (c *Crawler) Schedule(ctx context.Context) {
	var reqs []*collect.Request
	for _, seed := range c.Seeds {
		task, ok := Store.Get(seed.Name)
		if !ok {
			c.Logger.Error("task not found", zap.String("task", seed.Name))
			continue
		}
		task.AbsorbSeed(seed)
		if task.Rule.Root == nil {
			c.Logger.Error("task root rule missing", zap.String("task", seed.Name))
			continue
		}
		rootReqs, err := task.Rule.Root()
		if err != nil {
			c.Logger.Error("get root requests failed", zap.String("task", seed.Name), zap.Error(err))
			continue
		}
		for _, req := range rootReqs {
			req.Task = task
		}
		reqs = append(reqs, rootReqs...)
	}
	c.scheduler.Push(reqs...)

	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, req := range c.scheduler.NextRequests(c.BatchSize) {
				select {
				case c.workerCh <- req:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func (c *Crawler) CreateWork(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-c.workerCh:
			c.work(ctx, r)
		}
	}
}

// work 请求钩子→抓取→响应/异常钩子→解析→回灌新请求
func (c *Crawler) work(ctx context.Context, r *collect.Request) {
	r = c.pipeline.HandleRequest(r)
	if r == nil || r.Dropped() {
		if r != nil {
			c.Logger.Debug("request dropped",
				zap.String("url", r.Url),
				zap.String("reason", r.DropReason()),
			)
		}
		return
	}
	if r.Task == nil {
		c.Logger.Error("request without task", zap.String("url", r.Url))
		return
	}
	fetcher := r.Task.Fetcher
	if fetcher == nil {
		fetcher = c.Fetcher
	}
	if fetcher == nil {
		c.Logger.Error("no fetcher for request", zap.String("url", r.Url))
		return
	}
	resp, err := fetcher.Get(r)
	if err != nil {
		c.Logger.Error("fetch failed", zap.String("url", r.Url), zap.Error(err))
		c.pipeline.HandleException(r, err)
		return
	}
	resp = c.pipeline.HandleResponse(resp)
	if resp == nil || resp.Dropped() {
		if resp != nil {
			c.Logger.Debug("response dropped",
				zap.String("url", r.Url),
				zap.String("reason", resp.DropReason()),
			)
		}
		return
	}
	rule, ok := r.Task.GetRule(r.RuleName)
	if !ok {
		c.Logger.Error("rule not found",
			zap.String("rule", r.RuleName),
			zap.String("task", r.Task.Name),
		)
		return
	}
	result, err := rule.ParseFunc(&collect.CrawlerContext{
		Body: resp.Body,
		Req:  r,
	})
	if err != nil {
		c.Logger.Error("parse failed", zap.String("url", r.Url), zap.Error(err))
		return
	}
	if len(result.Requests) > 0 {
		c.scheduler.Push(result.Requests...)
	}
	select {
	case c.out <- result:
	case <-ctx.Done():
	}
}

// HandleResult 收集解析结果并写入存储
func (c *Crawler) HandleResult(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-c.out:
			for _, item := range res.Items {
				switch d := item.(type) {
				case *collector.DataCell:
					if c.Storage == nil {
						c.Logger.Sugar().Info("get result:", d.Data)
						continue
					}
					if err := c.Storage.Save(d); err != nil {
						c.Logger.Error("save data failed", zap.Error(err))
					}
				default:
					c.Logger.Sugar().Info("get result:", item)
				}
			}
		}
	}
}
