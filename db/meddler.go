package db

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

// init registers tags to be used to read/write from SQL DBs using meddler
func init() {
	meddler.Default = meddler.SQLite
	meddler.Register("bigint", BigIntMeddler{})
	meddler.Register("hash", HashMeddler{})
	meddler.Register("address", AddressMeddler{})
	meddler.Register("hashslice", HashSliceMeddler{})
}

// BigIntMeddler encodes or decodes the field value to or from string.
// A nil *big.Int is stored as NULL
type BigIntMeddler struct{}

// PreRead is called before a Scan operation for fields that have the BigIntMeddler
func (b BigIntMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

// PostRead is called after a Scan operation for fields that have the BigIntMeddler
func (b BigIntMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*sql.NullString)
	if !ok {
		return errors.New("scanTarget is not *sql.NullString")
	}
	field, ok := fieldPtr.(**big.Int)
	if !ok {
		return errors.New("fieldPtr is not *big.Int")
	}
	if !ptr.Valid {
		*field = nil
		return nil
	}
	decimal := 10
	*field, ok = new(big.Int).SetString(ptr.String, decimal)
	if !ok {
		return fmt.Errorf("big.Int.SetString failed on \"%v\"", ptr.String)
	}
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the BigIntMeddler
func (b BigIntMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(*big.Int)
	if !ok {
		return nil, errors.New("fieldPtr is not *big.Int")
	}
	if field == nil {
		return nil, nil
	}
	return field.String(), nil
}

// HashMeddler encodes or decodes the field value to or from string.
// The zero hash is stored as NULL
type HashMeddler struct{}

// PreRead is called before a Scan operation for fields that have the HashMeddler
func (b HashMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

// PostRead is called after a Scan operation for fields that have the HashMeddler
func (b HashMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*sql.NullString)
	if !ok {
		return errors.New("scanTarget is not *sql.NullString")
	}
	field, ok := fieldPtr.(*common.Hash)
	if !ok {
		return errors.New("fieldPtr is not common.Hash")
	}
	if !ptr.Valid {
		*field = common.Hash{}
		return nil
	}
	*field = common.HexToHash(ptr.String)
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the HashMeddler
func (b HashMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(common.Hash)
	if !ok {
		return nil, errors.New("fieldPtr is not common.Hash")
	}
	if field == (common.Hash{}) {
		return nil, nil
	}
	return field.Hex(), nil
}

// AddressMeddler encodes or decodes the field value to or from string.
// The zero address is stored as NULL
type AddressMeddler struct{}

// PreRead is called before a Scan operation for fields that have the AddressMeddler
func (b AddressMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

// PostRead is called after a Scan operation for fields that have the AddressMeddler
func (b AddressMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*sql.NullString)
	if !ok {
		return errors.New("scanTarget is not *sql.NullString")
	}
	field, ok := fieldPtr.(*common.Address)
	if !ok {
		return errors.New("fieldPtr is not common.Address")
	}
	if !ptr.Valid {
		*field = common.Address{}
		return nil
	}
	*field = common.HexToAddress(ptr.String)
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the AddressMeddler
func (b AddressMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.(common.Address)
	if !ok {
		return nil, errors.New("fieldPtr is not common.Address")
	}
	if field == (common.Address{}) {
		return nil, nil
	}
	return field.Hex(), nil
}

// HashSliceMeddler encodes or decodes a []common.Hash to or from a comma separated string.
// A nil slice is stored as NULL and an empty one as an empty string
type HashSliceMeddler struct{}

// PreRead is called before a Scan operation for fields that have the HashSliceMeddler
func (b HashSliceMeddler) PreRead(fieldAddr interface{}) (scanTarget interface{}, err error) {
	return new(sql.NullString), nil
}

// PostRead is called after a Scan operation for fields that have the HashSliceMeddler
func (b HashSliceMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	ptr, ok := scanTarget.(*sql.NullString)
	if !ok {
		return errors.New("scanTarget is not *sql.NullString")
	}
	field, ok := fieldPtr.(*[]common.Hash)
	if !ok {
		return errors.New("fieldPtr is not []common.Hash")
	}
	if !ptr.Valid {
		*field = nil
		return nil
	}
	if ptr.String == "" {
		*field = []common.Hash{}
		return nil
	}
	strHashes := strings.Split(ptr.String, ",")
	hashes := make([]common.Hash, 0, len(strHashes))
	for _, strHash := range strHashes {
		hashes = append(hashes, common.HexToHash(strHash))
	}
	*field = hashes
	return nil
}

// PreWrite is called before an Insert or Update operation for fields that have the HashSliceMeddler
func (b HashSliceMeddler) PreWrite(fieldPtr interface{}) (saveValue interface{}, err error) {
	field, ok := fieldPtr.([]common.Hash)
	if !ok {
		return nil, errors.New("fieldPtr is not []common.Hash")
	}
	if field == nil {
		return nil, nil
	}
	strHashes := make([]string, 0, len(field))
	for _, h := range field {
		strHashes = append(strHashes, h.Hex())
	}
	return strings.Join(strHashes, ","), nil
}
