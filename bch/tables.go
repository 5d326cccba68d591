package bch

func poly(exps ...int) uint32 {
	var p uint32
	for _, e := range exps {
		p |= 1 << e
	}
	return p
}

// EN 302 307 table 6a: g1..g12 for normal FECFRAMEs over GF(2^16).
var normalPolys = []uint32{
	poly(0, 2, 3, 5, 16),
	poly(0, 1, 4, 5, 6, 8, 16),
	poly(0, 2, 3, 4, 5, 7, 8, 9, 10, 11, 16),
	poly(0, 2, 4, 6, 9, 11, 12, 14, 16),
	poly(0, 1, 2, 3, 5, 8, 9, 10, 11, 12, 16),
	poly(0, 2, 4, 5, 7, 8, 9, 10, 12, 13, 14, 15, 16),
	poly(0, 2, 5, 6, 8, 9, 10, 11, 13, 15, 16),
	poly(0, 1, 2, 5, 6, 8, 9, 12, 13, 14, 16),
	poly(0, 5, 7, 9, 10, 11, 16),
	poly(0, 1, 2, 5, 7, 8, 10, 12, 13, 14, 16),
	poly(0, 2, 3, 5, 9, 11, 12, 13, 16),
	poly(0, 1, 5, 6, 7, 9, 11, 12, 16),
}

// EN 302 307 table 6b: g1..g12 for short FECFRAMEs over GF(2^14).
var shortPolys = []uint32{
	poly(0, 1, 3, 5, 14),
	poly(0, 6, 8, 11, 14),
	poly(0, 1, 2, 6, 9, 10, 14),
	poly(0, 4, 7, 8, 10, 12, 14),
	poly(0, 2, 4, 6, 8, 9, 11, 13, 14),
	poly(0, 3, 7, 8, 9, 13, 14),
	poly(0, 2, 5, 6, 7, 10, 11, 13, 14),
	poly(0, 5, 8, 9, 10, 11, 14),
	poly(0, 1, 2, 3, 9, 10, 14),
	poly(0, 3, 6, 9, 11, 12, 14),
	poly(0, 4, 11, 12, 14),
	poly(0, 1, 2, 3, 5, 6, 7, 8, 10, 13, 14),
}
