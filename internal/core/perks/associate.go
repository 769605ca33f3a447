package perks

import (
	"math"
	"sort"
)

// maxAssociationDistance is the largest gap, as a fraction of line width,
// between a merchant's start and an offer's start that still pairs them.
const maxAssociationDistance = 0.25

const distanceEpsilon = 1e-9

// pairing links merchants[Merchant] to offers[Offer].
type pairing struct {
	Merchant int
	Offer    int
}

// associate pairs merchant and offer tokens by their relative start offsets.
// Equal counts pair strictly by order; otherwise pairs come from distance.
func associate(merchants, offers []float64) []pairing {
	if len(merchants) == 0 || len(offers) == 0 {
		return nil
	}
	if len(merchants) == len(offers) {
		return associatePositional(len(merchants))
	}
	return associateByDistance(merchants, offers)
}

// associateLabeled is associate for offers that may name their merchant.
// labels[o] is the merchant offer o names, or -1. Pairs from associate stand
// when every label agrees with them; otherwise only offers naming a merchant
// no other offer names are paired.
func associateLabeled(merchants, offers []float64, labels []int) []pairing {
	pairs := associate(merchants, offers)
	byOffer := make(map[int]int, len(pairs))
	for _, p := range pairs {
		byOffer[p.Offer] = p.Merchant
	}
	agree := true
	claims := make(map[int]int)
	for o, m := range labels {
		if m < 0 || m >= len(merchants) {
			continue
		}
		claims[m]++
		if paired, ok := byOffer[o]; !ok || paired != m {
			agree = false
		}
	}
	if agree {
		return pairs
	}

	var out []pairing
	for o, m := range labels {
		if m < 0 || m >= len(merchants) || claims[m] > 1 {
			continue
		}
		out = append(out, pairing{Merchant: m, Offer: o})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Merchant < out[j].Merchant })
	return out
}

// associatePositional pairs the Nth merchant with the Nth offer.
func associatePositional(n int) []pairing {
	out := make([]pairing, n)
	for i := range out {
		out[i] = pairing{Merchant: i, Offer: i}
	}
	return out
}

// associateByDistance takes pairs greedily by smallest |merchant - offer|
// offset. A pair farther apart than maxAssociationDistance is never taken.
// A merchant equally close to two free offers is dropped, as is an offer
// equally close to two free merchants. Leftovers stay unpaired.
func associateByDistance(merchants, offers []float64) []pairing {
	type edge struct {
		m, o int
		d    float64
	}
	edges := make([]edge, 0, len(merchants)*len(offers))
	for m, mp := range merchants {
		for o, op := range offers {
			edges = append(edges, edge{m: m, o: o, d: math.Abs(mp - op)})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].d != edges[j].d {
			return edges[i].d < edges[j].d
		}
		if edges[i].m != edges[j].m {
			return edges[i].m < edges[j].m
		}
		return edges[i].o < edges[j].o
	})

	mDone := make([]bool, len(merchants))
	oDone := make([]bool, len(offers))
	var out []pairing
	for _, e := range edges {
		if e.d > maxAssociationDistance+distanceEpsilon {
			break
		}
		if mDone[e.m] || oDone[e.o] {
			continue
		}
		if tiedPosition(merchants[e.m], e.o, e.d, offers, oDone) {
			mDone[e.m] = true
			continue
		}
		if tiedPosition(offers[e.o], e.m, e.d, merchants, mDone) {
			oDone[e.o] = true
			continue
		}
		mDone[e.m], oDone[e.o] = true, true
		out = append(out, pairing{Merchant: e.m, Offer: e.o})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Merchant < out[j].Merchant })
	return out
}

// tiedPosition reports whether some other free position sits exactly d away
// from pos.
func tiedPosition(pos float64, self int, d float64, others []float64, done []bool) bool {
	for i, p := range others {
		if i == self || done[i] {
			continue
		}
		if math.Abs(math.Abs(pos-p)-d) <= distanceEpsilon {
			return true
		}
	}
	return false
}
