package model

import "sort"

// DaySet 以年内日序号为键的日集合
type DaySet map[int]bool

// NewDaySet 由若干日序号构造集合
func NewDaySet(days ...int) DaySet {
	s := make(DaySet, len(days))
	for _, d := range days {
		s[d] = true
	}
	return s
}

// Add 加入一天
func (s DaySet) Add(d int) {
	s[d] = true
}

// Remove 移除一天
func (s DaySet) Remove(d int) {
	delete(s, d)
}

// Has 是否包含某天
func (s DaySet) Has(d int) bool {
	return s[d]
}

// Len 集合大小
func (s DaySet) Len() int {
	return len(s)
}

// Sorted 升序切片
func (s DaySet) Sorted() []int {
	out := make([]int, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// Clone 深拷贝
func (s DaySet) Clone() DaySet {
	out := make(DaySet, len(s))
	for d := range s {
		out[d] = true
	}
	return out
}

// Subtract 原地移除 other 中的所有天
func (s DaySet) Subtract(other DaySet) {
	for d := range other {
		delete(s, d)
	}
}

// Union 返回并集
func (s DaySet) Union(other DaySet) DaySet {
	out := s.Clone()
	for d := range other {
		out[d] = true
	}
	return out
}

// Intersect 返回交集
func (s DaySet) Intersect(other DaySet) DaySet {
	out := make(DaySet)
	for d := range s {
		if other[d] {
			out[d] = true
		}
	}
	return out
}
