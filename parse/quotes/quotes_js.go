package quotes

import (
	"github.com/teandr/crawler/collect"
)

// QuotesJSTask 与QuotesTask抓取同一站点，规则用JS脚本表达
var QuotesJSTask = &collect.TaskMode{
	Options: collect.Options{
		Name:     "js_scrape_quotes",
		MaxDepth: 5,
	},
	Root: rootJs,
	Rules: []collect.RuleMode{
		{
			Name: "解析列表页",
			ParseFunc: `
				ctx.ParseJSReg("解析作者页","<a href=\"(/author/[^\"]+)\">");
			`,
		},
		{
			Name: "解析作者页",
			ParseFunc: `
				ctx.OutputJS("<h3 class=\"author-title\">");
			`,
		},
	},
}

var rootJs = `
	var arr = new Array();
	for (var i = 1; i <= 3; i++){
		var obj = {
			Url: "https://quotes.toscrape.com/page/" + i + "/",
			Priority: 1,
			RuleName: "解析列表页",
			Method: "GET"
		};
		arr.push(obj);
	}
	AddJSReqs(arr);
`
