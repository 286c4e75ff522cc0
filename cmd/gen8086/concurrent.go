package main

import (
	"math/rand"
	"sync"

	"github.com/artemijrodionov/sim8086/inst"
)

type wordCh chan inst.Word

func collectFromCh(ch wordCh, count int) []inst.Word {
	words := make([]inst.Word, 0, count)
	for w := range ch {
		words = append(words, w)
	}
	return words
}

func scheduleGen(count, chunks int, seed int64, ch wordCh) {
	var wg sync.WaitGroup
	wg.Add(chunks)
	for i := 0; i < chunks; i++ {
		n := count / chunks
		if i < count%chunks {
			n++
		}
		go func(r *rand.Rand, n int) {
			defer wg.Done()
			for j := 0; j < n; j++ {
				ch <- randWord(r)
			}
		}(rand.New(rand.NewSource(seed+int64(i))), n)
	}
	wg.Wait()
	close(ch)
}

// ConcurrentGen interleaves the goroutines' output, so the order (unlike
// the set of words per seed) varies between runs.
func ConcurrentGen(count, threads int, seed int64) []inst.Word {
	threads = max(threads, 1)
	ch := make(wordCh, threads)
	go scheduleGen(count, threads, seed, ch)
	return collectFromCh(ch, count)
}
