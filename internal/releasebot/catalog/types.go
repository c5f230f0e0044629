package catalog

// Platform: 게임에 연결된 플랫폼 (id + 표시 이름)
type Platform struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
}

// Region: 발매 지역
type Region struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Image: 카탈로그 이미지 URL 묶음
type Image struct {
	OriginalURL string `json:"original_url,omitempty"`
	MediumURL   string `json:"medium_url,omitempty"`
	SmallURL    string `json:"small_url,omitempty"`
	ThumbURL    string `json:"thumb_url,omitempty"`
}

// Game: 검색 결과 또는 상세 조회 결과 한 건.
// original_release_date 와 expected_release_* 는 동시에 존재하거나 동시에 비어 있을 수 있다.
type Game struct {
	ID                   int        `json:"id"`
	GUID                 string     `json:"guid,omitempty"`
	Name                 string     `json:"name"`
	Deck                 *string    `json:"deck,omitempty"`
	SiteDetailURL        string     `json:"site_detail_url,omitempty"`
	Image                *Image     `json:"image,omitempty"`
	Platforms            []Platform `json:"platforms"`
	OriginalReleaseDate  *string    `json:"original_release_date,omitempty"`
	ExpectedReleaseYear  *int       `json:"expected_release_year,omitempty"`
	ExpectedReleaseMonth *int       `json:"expected_release_month,omitempty"`
	ExpectedReleaseDay   *int       `json:"expected_release_day,omitempty"`
}

// Summary: 설명(deck) 텍스트. 없으면 빈 문자열.
func (g Game) Summary() string {
	if g.Deck == nil {
		return ""
	}
	return *g.Deck
}

// ImageURL: 표시용 이미지 URL. 중간 크기를 우선하고 없으면 fallback 을 반환한다.
func (g Game) ImageURL(fallback string) string {
	if g.Image == nil {
		return fallback
	}
	switch {
	case g.Image.MediumURL != "":
		return g.Image.MediumURL
	case g.Image.OriginalURL != "":
		return g.Image.OriginalURL
	case g.Image.SmallURL != "":
		return g.Image.SmallURL
	default:
		return fallback
	}
}

// PlatformNames: 플랫폼 표시 이름 목록
func PlatformNames(platforms []Platform) []string {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, p.Name)
	}
	return names
}

// ReleaseRecord: (게임, 플랫폼, 지역) 단위 발매 기록. 같은 플랫폼에 지역별로 여러 건이 있을 수 있다.
type ReleaseRecord struct {
	ID          int       `json:"id"`
	GUID        string    `json:"guid,omitempty"`
	Name        string    `json:"name"`
	Platform    *Platform `json:"platform,omitempty"`
	Region      *Region   `json:"region,omitempty"`
	ReleaseDate *string   `json:"release_date,omitempty"`
}

// PlatformID: 플랫폼 참조가 없으면 -1 을 반환한다. (0 은 와일드카드이므로 사용하지 않는다)
func (r ReleaseRecord) PlatformID() int {
	if r.Platform == nil {
		return -1
	}
	return r.Platform.ID
}

// RegionName: 지역 이름. 지역 참조가 없으면 빈 문자열.
func (r ReleaseRecord) RegionName() string {
	if r.Region == nil {
		return ""
	}
	return r.Region.Name
}

// FilteredResults: 플랫폼 필터 결과. Games[i] 와 Platforms[i] 는 항상 같은 게임을 가리킨다.
type FilteredResults struct {
	Games       []Game
	Platforms   [][]Platform
	PlatformIDs []int
}

// Len: 남은 게임 수
func (r FilteredResults) Len() int { return len(r.Games) }
