package record

// AddressRecord is the account layout owned by the address program.
type AddressRecord struct {
	Address [AddressSize]byte
}

// NewAddressRecord packs address into a zero-padded 512 byte field.
func NewAddressRecord(address string) (AddressRecord, error) {
	var rec AddressRecord
	if err := packText(rec.Address[:], address, "address"); err != nil {
		return AddressRecord{}, err
	}
	return rec, nil
}

// String returns the address text without its padding.
func (r AddressRecord) String() string { return unpackText(r.Address[:]) }

// Bytes returns the borsh encoding of the record.
func (r AddressRecord) Bytes() ([]byte, error) { return encode(&r, AddressSize) }

// EncodeAddress returns the 512 byte payload for address.
func EncodeAddress(address string) ([]byte, error) {
	rec, err := NewAddressRecord(address)
	if err != nil {
		return nil, err
	}
	return rec.Bytes()
}

// DecodeAddress reads an address record from the head of account data.
func DecodeAddress(data []byte) (AddressRecord, error) {
	var rec AddressRecord
	if err := decode(data, &rec, AddressSize); err != nil {
		return AddressRecord{}, err
	}
	return rec, nil
}
