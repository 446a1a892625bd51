package collect

// Task 一个已注册的抓取任务：规则树加上运行期选项。
// 种子请求只携带任务名，真正的规则在任务注册时就定下来
type Task struct {
	// Rule 当前任务规则
	Rule RuleTree
	Options
}

// TaskMode 动态规则模型
type TaskMode struct {
	Options
	// Root 初始化种子节点的JS脚本
	Root string `json:"root"`
	// Rules 具体爬虫规则树
	Rules []RuleMode `json:"rule"`
}

func NewTask(opts ...Option) *Task {
	options := defaultOptions
	for _, o := range opts {
		o(&options)
	}
	return &Task{
		Options: options,
	}
}

// AbsorbSeed 用种子上携带的运行期依赖补全任务，
// 种子未设置的字段保留任务注册时的值
func (t *Task) AbsorbSeed(seed *Task) {
	if seed.Fetcher != nil {
		t.Fetcher = seed.Fetcher
	}
	if seed.Storage != nil {
		t.Storage = seed.Storage
	}
	if seed.Logger != nil {
		t.Logger = seed.Logger
	}
	if seed.Cookie != "" {
		t.Cookie = seed.Cookie
	}
	if seed.Reload {
		t.Reload = seed.Reload
	}
	if seed.MaxDepth > 0 {
		t.MaxDepth = seed.MaxDepth
	}
}

// GetRule 按名称查找规则
func (t *Task) GetRule(ruleName string) (*Rule, bool) {
	rule, ok := t.Rule.Trunk[ruleName]
	return rule, ok
}

// ItemFields 规则声明的条目字段列表，任务或规则不存在时为nil
func (t *Task) ItemFields(ruleName string) []string {
	rule, ok := t.GetRule(ruleName)
	if !ok {
		return nil
	}
	return rule.ItemFields
}
