package catalog

import (
	"slices"
	"strings"
)

// 카탈로그 플랫폼 ID. PlatformAll 은 "필터 없음" 와일드카드다.
const (
	PlatformAll        = 0
	PlatformPC         = 94
	PlatformXboxOne    = 145
	PlatformPS4        = 146
	PlatformSwitch     = 157
	PlatformPS5        = 176
	PlatformXboxSeries = 179
)

// platformCodes: 설정에 저장되는 사람용 플랫폼 코드와 카탈로그 ID 매핑
var platformCodes = map[string]int{
	"ALL":         PlatformAll,
	"PC":          PlatformPC,
	"SWITCH":      PlatformSwitch,
	"XBOX_ONE":    PlatformXboxOne,
	"XBOX_SERIES": PlatformXboxSeries,
	"PS4":         PlatformPS4,
	"PS5":         PlatformPS5,
}

// KnownPlatformCodes: 설정 가능한 플랫폼 코드 목록 (도움말 출력 순서)
var KnownPlatformCodes = []string{"PC", "PS4", "PS5", "XBOX_ONE", "XBOX_SERIES", "SWITCH"}

// PlatformIDFromCode: 플랫폼 코드를 카탈로그 ID로 변환한다. 알 수 없는 코드는 PlatformAll.
func PlatformIDFromCode(code string) int {
	if id, ok := platformCodes[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return id
	}
	return PlatformAll
}

// IsKnownPlatformCode: 코드가 매핑 테이블에 존재하는지 확인한다.
func IsKnownPlatformCode(code string) bool {
	_, ok := platformCodes[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// PlatformIDsFromCodes: 서버 설정의 코드 목록을 ID 목록으로 변환한다.
// 설정이 비어 있으면 [PlatformAll] 을 반환한다.
func PlatformIDsFromCodes(codes []string) []int {
	if len(codes) == 0 {
		return []int{PlatformAll}
	}
	ids := make([]int, 0, len(codes))
	for _, code := range codes {
		ids = append(ids, PlatformIDFromCode(code))
	}
	return ids
}

// IsKnownPlatform: 와일드카드가 아닌 알려진 카탈로그 플랫폼 ID 인지 확인한다.
func IsKnownPlatform(id int) bool {
	if id == PlatformAll {
		return false
	}
	for _, known := range platformCodes {
		if known == id {
			return true
		}
	}
	return false
}

// PlatformCode: ID에 대응하는 코드를 반환한다. 매핑이 없으면 빈 문자열.
func PlatformCode(id int) string {
	for code, known := range platformCodes {
		if known == id && code != "ALL" {
			return code
		}
	}
	if id == PlatformAll {
		return "ALL"
	}
	return ""
}

// ContainsWildcard: ID 집합에 와일드카드가 포함되어 있는지 확인한다.
func ContainsWildcard(ids []int) bool {
	return slices.Contains(ids, PlatformAll)
}
