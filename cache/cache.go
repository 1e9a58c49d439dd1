// Package cache stores computed matrix powers in a bolt database, so
// repeated runs on the same chain skip the computation.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/op/go-logging"
	bolt "go.etcd.io/bbolt"
	"gonum.org/v1/gonum/mat"
)

// log is the global logging variable.
var log = logging.MustGetLogger("cache")

// MAIN is the bucket name for all cached powers.
var MAIN = []byte("powers")

// PowerData stores one computed power or power sum.
type PowerData struct {
	// Rows is the matrix dimension.
	Rows int `json:"rows"`
	// Data is the row-major matrix data.
	Data []float64 `json:"data"`
	// Method is the method used (direct or eigen).
	Method string `json:"method"`
	// Seconds is the original computation time.
	Seconds float64 `json:"seconds"`
}

// Matrix returns the stored result as a matrix.
func (d *PowerData) Matrix() *mat.Dense {
	return mat.NewDense(d.Rows, d.Rows, d.Data)
}

// CacheIO provides operations with the power cache.
type CacheIO struct {
	db *bolt.DB
}

// NewCacheIO creates a new CacheIO. A nil db disables the cache: Save
// and Get become no-ops.
func NewCacheIO(db *bolt.DB) *CacheIO {
	return &CacheIO{db: db}
}

// Key computes a cache key from the matrix contents, the exponent,
// the sum flag and the method.
func Key(m *mat.Dense, n uint64, sum bool, method string) []byte {
	h := sha256.New()
	rows, cols := m.Dims()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(rows))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(cols))
	h.Write(buf[:])
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(m.At(i, j)))
			h.Write(buf[:])
		}
	}
	binary.LittleEndian.PutUint64(buf[:], n)
	h.Write(buf[:])
	if sum {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	h.Write([]byte(method))
	return h.Sum(nil)
}

// Save saves a computed power to the database.
func (c *CacheIO) Save(key []byte, data *PowerData) error {
	if c.db == nil {
		return nil
	}
	dataB, err := json.Marshal(data)
	if err != nil {
		log.Error("Error serializing power", err)
		return err
	}
	err = c.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}
		return b.Put(key, dataB)
	})
	if err != nil {
		log.Error("Error saving power", err)
	}
	return err
}

// Get returns a cached power, or nil if the key is unknown.
func (c *CacheIO) Get(key []byte) (*PowerData, error) {
	if c.db == nil {
		return nil, nil
	}
	var dataB []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}
		v := b.Get(key)
		if v != nil {
			dataB = make([]byte, len(v))
			copy(dataB, v)
		}
		return nil
	})
	if err != nil || dataB == nil {
		return nil, err
	}

	var data *PowerData
	if err = json.Unmarshal(dataB, &data); err != nil {
		return nil, err
	}
	log.Noticef("Found cached %s result (%.3fs originally)", data.Method, data.Seconds)
	return data, nil
}
