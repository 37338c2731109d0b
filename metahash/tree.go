package metahash

import (
	"lukechampine.com/blake3"
)

// Hash is a blake3-256 digest.
type Hash = [32]byte

func hash(b []byte) Hash {
	return blake3.Sum256(b)
}

// LeafHashes encodes and hashes every leaf, in order.
func LeafHashes(leaves []Type) ([]Hash, error) {
	out := make([]Hash, 0, len(leaves))
	for _, l := range leaves {
		b, err := l.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, hash(b))
	}
	return out, nil
}

// Root folds the leaf hashes into the tree root. Nodes are consumed in pairs
// from the back and each parent is pushed to the front, which keeps the tree
// complete and left-filled. An empty tree has a zero root.
func Root(leaves []Hash) Hash {
	if len(leaves) == 0 {
		return Hash{}
	}
	nodes := append(make([]Hash, 0, len(leaves)), leaves...)
	for len(nodes) > 1 {
		right := nodes[len(nodes)-1]
		left := nodes[len(nodes)-2]
		nodes = nodes[:len(nodes)-2]

		var pair [64]byte
		copy(pair[:32], left[:])
		copy(pair[32:], right[:])
		nodes = append([]Hash{hash(pair[:])}, nodes...)
	}
	return nodes[0]
}
