package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kaptinlin/jsonrepair"

	"github.com/BaSui01/orgflow/hierarchy"
)

// proposal 是模型给出的一条经理指派
type proposal struct {
	Name    string  `json:"name" jsonschema:"description=Name of a person in the cycle" validate:"required"`
	Manager *string `json:"manager" jsonschema:"description=Corrected manager name or null when the person is at the top"`
	Reason  string  `json:"reason" jsonschema:"description=Brief explanation" validate:"max=4000"`
}

// resolution 是模型响应的顶层结构
type resolution struct {
	UserManagers []proposal `json:"user_managers" jsonschema:"required" validate:"required,dive"`
}

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// stripFences 返回第一个 markdown 代码块的内容；没有代码块时原样返回
func stripFences(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// extractJSON 截取第一个 '[' 或 '{' 到与之对应的最后一个闭合符
func extractJSON(s string) string {
	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return ""
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end <= start {
		return s[start:]
	}
	return s[start : end+1]
}

// decode 接受 {"user_managers": [...]} 或裸数组
func decode(s string) (resolution, error) {
	var res resolution
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		err := json.Unmarshal([]byte(s), &res.UserManagers)
		if err == nil && res.UserManagers == nil {
			res.UserManagers = []proposal{}
		}
		return res, err
	}
	if err := json.Unmarshal([]byte(s), &res); err != nil {
		return res, err
	}
	if res.UserManagers == nil {
		return res, errors.New(`response object has no "user_managers" array`)
	}
	return res, nil
}

// parseResolution 解析模型输出，必要时修复 JSON
func parseResolution(content string, validate *validator.Validate) (resolution, error) {
	body := extractJSON(stripFences(content))
	if body == "" {
		return resolution{}, errors.New("no JSON found in response")
	}

	res, err := decode(body)
	if err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(body)
		if repairErr != nil {
			return resolution{}, fmt.Errorf("parse response: %w (repair: %v)", err, repairErr)
		}
		res, err = decode(repaired)
		if err != nil {
			return resolution{}, fmt.Errorf("parse repaired response: %w", err)
		}
	}

	if err := validate.Struct(res); err != nil {
		return resolution{}, fmt.Errorf("invalid response: %w", err)
	}
	return res, nil
}

// isNullManager 识别模型常见的"无经理"写法
func isNullManager(m string) bool {
	switch strings.ToLower(strings.TrimSpace(m)) {
	case "", "null", "none", "n/a":
		return true
	}
	return false
}

// toAssertions 把提案转换为断言，并按大小写不敏感方式对齐到已知名字
func toAssertions(res resolution, known map[string]string) []hierarchy.Assertion {
	canonical := func(name string) string {
		name = strings.TrimSpace(name)
		if c, ok := known[strings.ToLower(name)]; ok {
			return c
		}
		return name
	}

	out := make([]hierarchy.Assertion, 0, len(res.UserManagers))
	for _, p := range res.UserManagers {
		a := hierarchy.Assertion{Name: canonical(p.Name), Reason: strings.TrimSpace(p.Reason)}
		if p.Manager != nil && !isNullManager(*p.Manager) {
			a.Manager = canonical(*p.Manager)
		}
		out = append(out, a)
	}
	return out
}
