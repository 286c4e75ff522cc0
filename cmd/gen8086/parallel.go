package main

import (
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/artemijrodionov/sim8086/inst"
)

func create(count int, seed int64) []inst.Word {
	r := rand.New(rand.NewSource(seed))
	words := make([]inst.Word, count)
	for i := range words {
		words[i] = randWord(r)
	}
	return words
}

// ParallelGen builds one chunk per thread in memory and joins them in chunk
// order, so a seed always gives the same stream.
func ParallelGen(count, chunks int, seed int64) ([]inst.Word, error) {
	chunks = max(chunks, 1)
	result := make([][]inst.Word, chunks)
	var g errgroup.Group
	for i := 0; i < chunks; i++ {
		n := count / chunks
		if i < count%chunks {
			n++
		}
		g.Go(func() error {
			result[i] = create(n, seed+int64(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	words := make([]inst.Word, 0, count)
	for _, chunk := range result {
		words = append(words, chunk...)
	}
	return words, nil
}
