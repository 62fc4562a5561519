package chat

import (
	"regexp"
	"strconv"
	"strings"

	"hr-copilot-go/internal/constants"
)

// 对话入口的意图识别：全部基于确定性规则，不经过模型。
// 规则按固定优先级依次尝试：问候 > 历史岗位查找 > 计数 > 入围 > 默认对话。
// 前面的规则一旦命中就短路，歧义消息（例如同时像计数又像查找的）
// 始终归入优先级更高的那个意图。

// Intent 消息意图
type Intent int

const (
	// IntentDialogue 默认意图：进入岗位创建的槽位填充对话
	IntentDialogue Intent = iota
	// IntentGreeting 问候
	IntentGreeting
	// IntentJobLookup 查找历史创建的岗位
	IntentJobLookup
	// IntentCount 统计候选人数量
	IntentCount
	// IntentShortlist 入围操作（预览或执行）
	IntentShortlist
)

// Command 一条消息的识别结果
type Command struct {
	Intent Intent
	// CountType 计数意图命中的名词（resumes/candidates/...），仅IntentCount有效
	CountType string
	// Threshold 分数阈值，已钳制到 [0,100]；nil表示不限分数
	Threshold *int
	// Apply 入围意图下true表示执行写库，false仅预览名单
	Apply bool
}

var greetings = map[string]bool{
	"hi": true, "hello": true, "hey": true,
	"hi!": true, "hello!": true, "hey!": true,
}

var (
	jobRefPattern     = regexp.MustCompile(`\b(created|made|posted)\b.*\b(job|role)\b`)
	beforePattern     = regexp.MustCompile(`\bbefore\b`)
	countPattern      = regexp.MustCompile(`how many (resumes|candidates|applications|applicants)\b`)
	abovePattern      = regexp.MustCompile(`above\s*(\d{1,3})`)
	countAbovePattern = regexp.MustCompile(`how many .*above\s*(\d{1,3})`)
	shortlistPattern  = regexp.MustCompile(`shortlist(?:\s+all)?(?:\s+above|\s+>=|\s+>|\s+greater than|\s+over)?\s*(\d{1,3})`)
	applyPattern      = regexp.MustCompile(`\b(mark|set|apply|save|shortlist\s+all|please\s+shortlist|shortlist\s+and)\b`)
)

// Classify 识别一条消息的意图
// 匹配全部在小写化后的文本上进行。
func Classify(message string) Command {
	msg := strings.ToLower(strings.TrimSpace(message))

	if greetings[msg] {
		return Command{Intent: IntentGreeting}
	}

	if MatchesJobReference(msg) {
		return Command{Intent: IntentJobLookup}
	}

	if cmd, ok := ParseCountCommand(msg); ok {
		return cmd
	}

	if cmd, ok := ParseShortlistCommand(msg); ok {
		return cmd
	}

	return Command{Intent: IntentDialogue}
}

// MatchesJobReference 消息是否在引用一个已创建的岗位
// "I created a ... job"、"you posted a ... role" 或任何带 "before" 的提法。
func MatchesJobReference(message string) bool {
	msg := strings.ToLower(message)
	return jobRefPattern.MatchString(msg) || beforePattern.MatchString(msg)
}

// ParseCountCommand 解析计数命令
// 主规则要求出现明确的计数名词；兜底规则接住 "how many ... above 70"
// 这类名词不规范的问法。
func ParseCountCommand(message string) (Command, bool) {
	msg := strings.ToLower(message)
	if m := countPattern.FindStringSubmatch(msg); m != nil {
		cmd := Command{Intent: IntentCount, CountType: m[1]}
		if above := abovePattern.FindStringSubmatch(msg); above != nil {
			cmd.Threshold = parseThreshold(above[1])
		}
		return cmd, true
	}

	if m := countAbovePattern.FindStringSubmatch(msg); m != nil {
		return Command{
			Intent:    IntentCount,
			CountType: "candidates",
			Threshold: parseThreshold(m[1]),
		}, true
	}

	return Command{}, false
}

// ParseShortlistCommand 解析入围命令
// 阈值必须出现；是否实际写库取决于消息里有没有执行动词。
func ParseShortlistCommand(message string) (Command, bool) {
	msg := strings.ToLower(message)
	m := shortlistPattern.FindStringSubmatch(msg)
	if m == nil {
		return Command{}, false
	}
	return Command{
		Intent:    IntentShortlist,
		Threshold: parseThreshold(m[1]),
		Apply:     applyPattern.MatchString(msg),
	}, true
}

// parseThreshold 解析并钳制阈值，正则保证了是1-3位数字
func parseThreshold(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	n = clampThreshold(n)
	return &n
}

func clampThreshold(n int) int {
	if n < constants.MinScore {
		return constants.MinScore
	}
	if n > constants.MaxScore {
		return constants.MaxScore
	}
	return n
}

// FindJobByTitleTokens 在岗位标题列表中找最匹配的一个
// titles 必须按创建时间从新到旧排列；消息与标题共享任一长度>2的
// 词元即视为命中，返回第一个命中的下标，未命中返回-1。
func FindJobByTitleTokens(msg string, titles []string) int {
	msgTokens := tokenSet(msg)
	for i, title := range titles {
		for token := range tokenSet(title) {
			if msgTokens[token] {
				return i
			}
		}
	}
	return -1
}

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// tokenSet 小写分词，只保留长度>2的词元
func tokenSet(s string) map[string]bool {
	tokens := tokenPattern.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if len(t) > 2 {
			set[t] = true
		}
	}
	return set
}
