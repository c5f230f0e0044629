package catalog

import (
	"reflect"
	"testing"
)

func platformsOf(ids ...int) []Platform {
	out := make([]Platform, 0, len(ids))
	for _, id := range ids {
		out = append(out, Platform{ID: id, Name: PlatformCode(id)})
	}
	return out
}

func TestFilterPlatforms_WildcardPassesThrough(t *testing.T) {
	games := []Game{
		{ID: 1, Name: "a", Platforms: platformsOf(PlatformPC, PlatformPS5)},
		{ID: 2, Name: "b"},
	}

	result := FilterPlatforms([]int{PlatformPC, PlatformAll}, games)

	if result.Len() != 2 {
		t.Fatalf("expected 2 games, got %d", result.Len())
	}
	if len(result.PlatformIDs) != 0 {
		t.Fatalf("expected empty platform ids, got %v", result.PlatformIDs)
	}
	if !reflect.DeepEqual(result.Platforms[0], games[0].Platforms) {
		t.Fatalf("expected raw platforms, got %v", result.Platforms[0])
	}
	if result.Platforms[1] != nil {
		t.Fatalf("expected nil platforms for second game, got %v", result.Platforms[1])
	}
}

func TestFilterPlatforms_IntersectsAndPreservesOrder(t *testing.T) {
	// Given: 허용 = {PC, SWITCH}
	games := []Game{
		{ID: 10, Platforms: platformsOf(PlatformPS4)},
		{ID: 11, Platforms: platformsOf(PlatformSwitch, PlatformPS5, PlatformPC)},
		{ID: 12},
		{ID: 13, Platforms: platformsOf(PlatformPC)},
	}
	allowed := []int{PlatformPC, PlatformSwitch}

	// When
	result := FilterPlatforms(allowed, games)

	// Then: 교집합이 있는 게임만 입력 순서대로 남는다
	gotIDs := []int{}
	for _, g := range result.Games {
		gotIDs = append(gotIDs, g.ID)
	}
	if !reflect.DeepEqual(gotIDs, []int{11, 13}) {
		t.Fatalf("unexpected kept games: %v", gotIDs)
	}
	if len(result.Platforms) != len(result.Games) {
		t.Fatalf("platform lists not index-aligned: %d vs %d", len(result.Platforms), len(result.Games))
	}
	if !reflect.DeepEqual(result.Platforms[0], platformsOf(PlatformSwitch, PlatformPC)) {
		t.Fatalf("unexpected matched platforms: %v", result.Platforms[0])
	}
	if !reflect.DeepEqual(result.Platforms[1], platformsOf(PlatformPC)) {
		t.Fatalf("unexpected matched platforms: %v", result.Platforms[1])
	}
	if !reflect.DeepEqual(result.PlatformIDs, allowed) {
		t.Fatalf("unexpected used ids: %v", result.PlatformIDs)
	}
}

func TestFilterPlatforms_IgnoresUnknownAllowedIDs(t *testing.T) {
	games := []Game{{ID: 1, Platforms: []Platform{{ID: 999}, {ID: PlatformPS5}}}}

	result := FilterPlatforms([]int{999, PlatformPS5, PlatformPS5}, games)

	if !reflect.DeepEqual(result.PlatformIDs, []int{PlatformPS5}) {
		t.Fatalf("unexpected used ids: %v", result.PlatformIDs)
	}
	if !reflect.DeepEqual(result.Platforms[0], []Platform{{ID: PlatformPS5}}) {
		t.Fatalf("unexpected matched platforms: %v", result.Platforms[0])
	}
}
