package share

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("newHash", func() {
	It("draws every alphabet character with near-equal frequency", func() {
		const samples = 50000
		counts := make(map[byte]int, len(hashAlphabet))
		for i := 0; i < samples; i++ {
			hash, err := newHash()
			Expect(err).NotTo(HaveOccurred())
			Expect(hash).To(HaveLen(hashLength))
			for j := 0; j < len(hash); j++ {
				counts[hash[j]]++
			}
		}

		for b := range counts {
			Expect(strings.IndexByte(hashAlphabet, b)).To(BeNumerically(">=", 0))
		}

		// A plain byte-modulo draw overweights the first 256%62 characters
		// by 25%, well outside this tolerance.
		expected := float64(samples*hashLength) / float64(len(hashAlphabet))
		for i := 0; i < len(hashAlphabet); i++ {
			Expect(float64(counts[hashAlphabet[i]])).To(BeNumerically("~", expected, expected*0.1),
				"character %q is over- or under-represented", hashAlphabet[i])
		}
	})
})
