package util

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// GetKeys returns the map keys in ascending order.
func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := maps.Keys(m)
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func Min[A constraints.Ordered](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Ordered](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Sum[A Number](nums []A) float64 {
	var total float64
	for _, v := range nums {
		total += float64(v)
	}
	return total
}

// Mean is 0 for an empty slice.
func Mean[A Number](nums []A) float64 {
	if len(nums) == 0 {
		return 0
	}
	return Sum(nums) / float64(len(nums))
}

// StdDev is the population standard deviation.
func StdDev[A Number](nums []A) float64 {
	if len(nums) == 0 {
		return 0
	}
	mean := Mean(nums)
	var acc float64
	for _, v := range nums {
		d := float64(v) - mean
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(nums)))
}

// Round rounds to the given number of decimal places.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}

// RoundTo rounds to the nearest multiple of step; a step <= 0 leaves x untouched.
func RoundTo(x float64, step float64) float64 {
	if step <= 0 {
		return x
	}
	return math.Round(x/step) * step
}
