package quotes

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/teandr/crawler/collect"
)

var QuotesTask = &collect.Task{
	Options: collect.Options{
		Name:     "scrape_quotes",
		MaxDepth: 5,
	},
	Rule: collect.RuleTree{
		Root: func() ([]*collect.Request, error) {
			roots := []*collect.Request{
				{
					Priority: 1,
					Url:      site + "/page/1/",
					Method:   "GET",
					RuleName: "解析列表页",
				},
			}
			return roots, nil
		},
		Trunk: map[string]*collect.Rule{
			"解析列表页": {
				ParseFunc: parseQuoteList,
				ItemFields: []string{
					"text",
					"author",
					"tags",
				},
			},
			"解析作者页": {
				ParseFunc: parseAuthor,
				ItemFields: []string{
					"name",
					"born",
				},
			},
		},
	},
}

const site = "https://quotes.toscrape.com"

func parseQuoteList(ctx *collect.CrawlerContext) (collect.ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(ctx.Body))
	if err != nil {
		return collect.ParseResult{}, fmt.Errorf("parse quote list failed:%w", err)
	}
	result := collect.ParseResult{}
	doc.Find("div.quote").Each(func(_ int, s *goquery.Selection) {
		var tags []string
		s.Find("div.tags a.tag").Each(func(_ int, t *goquery.Selection) {
			tags = append(tags, strings.TrimSpace(t.Text()))
		})
		quote := map[string]any{
			"text":   strings.TrimSpace(s.Find("span.text").Text()),
			"author": strings.TrimSpace(s.Find("small.author").Text()),
			"tags":   strings.Join(tags, ","),
		}
		result.Items = append(result.Items, ctx.Output(quote))

		if href, ok := s.Find("span a").Attr("href"); ok {
			result.Requests = append(result.Requests, &collect.Request{
				Method:   "GET",
				Task:     ctx.Req.Task,
				Url:      site + href,
				Depth:    ctx.Req.Depth + 1,
				RuleName: "解析作者页",
			})
		}
	})
	if href, ok := doc.Find("li.next a").Attr("href"); ok {
		result.Requests = append(result.Requests, &collect.Request{
			Method:   "GET",
			Task:     ctx.Req.Task,
			Url:      site + href,
			Depth:    ctx.Req.Depth + 1,
			RuleName: "解析列表页",
		})
	}

	return result, nil
}

func parseAuthor(ctx *collect.CrawlerContext) (collect.ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(ctx.Body))
	if err != nil {
		return collect.ParseResult{}, fmt.Errorf("parse author page failed:%w", err)
	}
	author := map[string]any{
		"name": strings.TrimSpace(doc.Find("h3.author-title").Text()),
		"born": strings.TrimSpace(doc.Find("span.author-born-date").Text()),
	}
	data := ctx.Output(author)
	result := collect.ParseResult{
		Items: []any{data},
	}

	return result, nil
}
