package main

import (
	"math/rand"

	"github.com/artemijrodionov/sim8086/inst"
)

func SequentialGen(count int, seed int64) []inst.Word {
	r := rand.New(rand.NewSource(seed))
	words := make([]inst.Word, count)
	for i := 0; i < count; i++ {
		words[i] = randWord(r)
	}
	return words
}
