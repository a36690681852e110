package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// HashVector hashes the exact values of vec. Values are separated so that
// vectors of different lengths never collide.
func HashVector(vec []float64) [32]byte {
	buffer := GetBytesBuffer()
	defer PutBytesBuffer(buffer)
	buffer.WriteString(strconv.Itoa(len(vec)))
	for i := range vec {
		buffer.WriteByte('|')
		buffer.WriteString(strconv.FormatFloat(vec[i], 'g', -1, 64))
	}
	return sha256.Sum256(buffer.Bytes())
}

func HashVectorHex(vec []float64) string {
	sum := HashVector(vec)
	return hex.EncodeToString(sum[:])
}
