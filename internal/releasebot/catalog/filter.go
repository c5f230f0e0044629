package catalog

// FilterPlatforms: 허용 플랫폼 집합으로 검색 결과를 줄인다.
//
// 와일드카드가 포함되면 게임과 플랫폼 목록을 그대로 통과시키고 PlatformIDs 는 비운다.
// 그 외에는 알려진 플랫폼 id 만 허용 집합으로 인정하고, 교집합이 비어 있거나
// 플랫폼 목록이 없는 게임은 버린다. 입력 순서는 유지되며 Games[i] 와 Platforms[i] 는 항상 같은 게임이다.
func FilterPlatforms(allowed []int, games []Game) FilteredResults {
	if len(allowed) == 0 || ContainsWildcard(allowed) {
		result := FilteredResults{
			Games:       make([]Game, 0, len(games)),
			Platforms:   make([][]Platform, 0, len(games)),
			PlatformIDs: []int{},
		}
		for _, game := range games {
			result.Games = append(result.Games, game)
			result.Platforms = append(result.Platforms, game.Platforms)
		}
		return result
	}

	allowedSet := make(map[int]struct{}, len(allowed))
	usedIDs := make([]int, 0, len(allowed))
	for _, id := range allowed {
		if !IsKnownPlatform(id) {
			continue
		}
		if _, dup := allowedSet[id]; dup {
			continue
		}
		allowedSet[id] = struct{}{}
		usedIDs = append(usedIDs, id)
	}

	result := FilteredResults{PlatformIDs: usedIDs}
	for _, game := range games {
		if len(game.Platforms) == 0 {
			continue
		}
		matched := make([]Platform, 0, len(game.Platforms))
		for _, platform := range game.Platforms {
			if _, ok := allowedSet[platform.ID]; ok {
				matched = append(matched, platform)
			}
		}
		if len(matched) == 0 {
			continue
		}
		result.Games = append(result.Games, game)
		result.Platforms = append(result.Platforms, matched)
	}
	return result
}
