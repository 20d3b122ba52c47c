package mapslicehelp

import (
	"github.com/umpc/go-sortedmap"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/exp/constraints"
)

func LastElement[T any](elements []T) *T {
	length := len(elements)
	if length > 0 {
		return &elements[length-1]
	}
	return nil
}

func AsKeys[T constraints.Ordered](elements []T) map[T]any {
	mapped := make(map[T]any, len(elements))
	for _, element := range elements {
		mapped[element] = struct{}{}
	}
	return mapped
}

func OrderedMapKeys[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []K {
	l := make([]K, m.Len())
	i := 0
	for p := m.Oldest(); p != nil; p = p.Next() {
		l[i] = p.Key
		i++
	}
	return l
}

func ReverseClone[S ~[]E, E any](s S) S {
	if s == nil {
		return nil
	}
	l := len(s)
	c := make(S, l)
	for i := 0; i < l; i++ {
		c[l-1-i] = s[i]
	}
	return c
}

// Ranked is a key with the value it was ranked by.
type Ranked[K comparable] struct {
	Key   K
	Value float64
}

// RankByValue orders the entries of an ordered map by ascending value.
// Entries with equal values keep the order of the ordered map.
func RankByValue[K comparable](m *orderedmap.OrderedMap[K, float64]) []Ranked[K] {
	type rankRecord struct {
		value float64
		index int
	}
	ranked := sortedmap.New(m.Len(), func(x, y interface{}) bool {
		a, b := x.(rankRecord), y.(rankRecord)
		if a.value == b.value {
			return a.index < b.index
		}
		return a.value < b.value
	})
	i := 0
	for p := m.Oldest(); p != nil; p = p.Next() {
		ranked.Insert(p.Key, rankRecord{value: p.Value, index: i})
		i++
	}

	result := make([]Ranked[K], 0, ranked.Len())
	records := ranked.Map()
	for _, key := range ranked.Keys() {
		result = append(result, Ranked[K]{Key: key.(K), Value: records[key].(rankRecord).value})
	}
	return result
}
