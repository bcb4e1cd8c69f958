package record

import "fmt"

// ProfileRecord is the account layout owned by the profile program.
type ProfileRecord struct {
	Name  [NameSize]byte
	Date  uint32
	Month uint32
	Year  uint32
}

func NewProfileRecord(name string, date, month, year uint32) (ProfileRecord, error) {
	rec := ProfileRecord{Date: date, Month: month, Year: year}
	if err := packText(rec.Name[:], name, "name"); err != nil {
		return ProfileRecord{}, err
	}
	return rec, nil
}

// NameString returns the profile name without its padding.
func (r ProfileRecord) NameString() string { return unpackText(r.Name[:]) }

func (r ProfileRecord) String() string {
	return fmt.Sprintf("%s (%d/%d/%d)", r.NameString(), r.Date, r.Month, r.Year)
}

// Bytes returns the borsh encoding of the record.
func (r ProfileRecord) Bytes() ([]byte, error) { return encode(&r, ProfileSize) }

// EncodeProfile returns the 76 byte payload for a profile.
func EncodeProfile(name string, date, month, year uint32) ([]byte, error) {
	rec, err := NewProfileRecord(name, date, month, year)
	if err != nil {
		return nil, err
	}
	return rec.Bytes()
}

// DecodeProfile reads a profile record from the head of account data.
func DecodeProfile(data []byte) (ProfileRecord, error) {
	var rec ProfileRecord
	if err := decode(data, &rec, ProfileSize); err != nil {
		return ProfileRecord{}, err
	}
	return rec, nil
}
