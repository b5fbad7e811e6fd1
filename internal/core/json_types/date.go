package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date - календарная дата без времени.
type Date struct {
	Date time.Time
}

// ParseDate принимает дату как YYYY-MM-DD либо как RFC3339,
// от которого берется только календарная часть.
func ParseDate(str string) (Date, error) {
	parsedDate, err := time.Parse(dateLayout, str)
	if err != nil {
		parsedDate, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return Date{}, fmt.Errorf("failed to parse date: %v", err)
		}
		parsedDate = time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, time.UTC)
	}
	return Date{Date: parsedDate}, nil
}

func (d Date) String() string {
	return d.Date.Format(dateLayout)
}

func (d Date) IsZero() bool {
	return d.Date.IsZero()
}

// AddDays возвращает дату, сдвинутую на days дней.
func (d Date) AddDays(days int) Date {
	return Date{Date: d.Date.AddDate(0, 0, days)}
}

func (d Date) Before(other Date) bool {
	return d.Date.Before(other.Date)
}

func (d Date) After(other Date) bool {
	return d.Date.After(other.Date)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])
	parsed, err := ParseDate(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
