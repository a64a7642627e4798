package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UnitRate is the amount billed per dispatched handler, in DH.
const UnitRate int64 = 150

// DateLayout is the storage and wire format of shipment dates.
const DateLayout = "2006-01-02"

// ErrSiteNotFound is returned when a shipment references an unknown site.
var ErrSiteNotFound = errors.New("site not found")

// SiteStatus is the lifecycle state of a client site.
type SiteStatus string

const (
	StatusActive   SiteStatus = "active"
	StatusInactive SiteStatus = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s SiteStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

type Site struct {
	ID      string     `db:"id" json:"id"`
	Name    string     `db:"name" json:"name"`
	Address string     `db:"address" json:"address"`
	Status  SiteStatus `db:"status" json:"status"`
}

type Shipment struct {
	ID           string `db:"id" json:"id"`
	SiteID       string `db:"site_id" json:"site_id"`
	HandlerCount int64  `db:"handler_count" json:"handler_count"`
	ShipmentDate Date   `db:"shipment_date" json:"shipment_date"`
}

// Cost is the billed amount of the shipment. It is derived on read and
// never stored.
func (s Shipment) Cost() int64 {
	return s.HandlerCount * UnitRate
}

// MarshalJSON adds the derived cost_total field.
func (s Shipment) MarshalJSON() ([]byte, error) {
	type shipment Shipment
	return json.Marshal(struct {
		shipment
		CostTotal int64 `json:"cost_total"`
	}{shipment(s), s.Cost()})
}

type User struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	FullName     string `db:"full_name"`
}

// Profile is the part of a user that may leave the server.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

// Date is a calendar day without time of day.
type Date struct {
	time.Time
}

// NewDate returns the date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as YYYY-MM-DD text.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v.UTC())
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
