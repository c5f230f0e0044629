// Package messageprovider: YAML 메시지 카탈로그. 점 표기 키로 조회하고 {name} 자리표시자를 치환한다.
package messageprovider

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider: 평탄화된 메시지 테이블
type Provider struct {
	messages map[string]string
}

// Param: 자리표시자 치환 값
type Param struct {
	Key   string
	Value any
}

// P: Param 생성 단축 함수
func P(key string, value any) Param {
	return Param{Key: key, Value: value}
}

// NewFromYAML: YAML 전체를 카탈로그로 읽는다.
func NewFromYAML(yamlContent string) (*Provider, error) {
	var raw any
	if err := yaml.Unmarshal([]byte(yamlContent), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal yaml failed: %w", err)
	}

	messages := make(map[string]string)
	if raw == nil {
		return &Provider{messages: messages}, nil
	}
	root, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected yaml root type: %T", raw)
	}
	flatten("", root, messages)
	return &Provider{messages: messages}, nil
}

// NewFromYAMLAtPath: rootKey 아래 서브트리만 카탈로그로 쓴다. 키는 rootKey 를 뺀 상대 경로다.
func NewFromYAMLAtPath(yamlContent string, rootKey string) (*Provider, error) {
	provider, err := NewFromYAML(yamlContent)
	if err != nil {
		return nil, err
	}

	rootKey = strings.TrimSpace(rootKey)
	if rootKey == "" {
		return provider, nil
	}
	if _, isLeaf := provider.messages[rootKey]; isLeaf {
		return nil, fmt.Errorf("yaml root key must be an object: %q", rootKey)
	}

	prefix := rootKey + "."
	sub := make(map[string]string)
	for key, value := range provider.messages {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			sub[rest] = value
		}
	}
	if len(sub) == 0 {
		return nil, fmt.Errorf("yaml root key not found: %q", rootKey)
	}
	return &Provider{messages: sub}, nil
}

// Get: key 의 메시지를 params 로 치환해 반환한다. 없는 키는 key 자체를 돌려준다.
func (p *Provider) Get(key string, params ...Param) string {
	if p == nil {
		return key
	}
	template, ok := p.messages[strings.TrimSpace(key)]
	if !ok {
		return key
	}
	if len(params) == 0 {
		return template
	}

	pairs := make([]string, 0, len(params)*2)
	for _, param := range params {
		pairs = append(pairs, "{"+param.Key+"}", fmt.Sprint(param.Value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Has: key 존재 여부
func (p *Provider) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p.messages[key]
	return ok
}

// flatten: 중첩 맵을 점 표기 키로 편다. 시퀀스는 줄바꿈으로 잇는다.
func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		switch typed := value.(type) {
		case map[string]any:
			flatten(path, typed, out)
		case map[any]any:
			converted := make(map[string]any, len(typed))
			for k, v := range typed {
				converted[fmt.Sprint(k)] = v
			}
			flatten(path, converted, out)
		case []any:
			lines := make([]string, 0, len(typed))
			for _, item := range typed {
				lines = append(lines, fmt.Sprint(item))
			}
			out[path] = strings.Join(lines, "\n")
		case nil:
			out[path] = ""
		default:
			out[path] = fmt.Sprint(typed)
		}
	}
}
