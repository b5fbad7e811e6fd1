package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Time - время дня с точностью до минуты. В хранилище лежит как HH:MM:SS,
// наружу отдается как HH:MM.
type Time struct {
	Time time.Time
}

// ParseTime принимает время как HH:MM:SS или HH:MM.
func ParseTime(str string) (Time, error) {
	parsedTime, err := time.Parse("15:04:05", str)
	if err != nil {
		parsedTime, err = time.Parse("15:04", str)
		if err != nil {
			return Time{}, fmt.Errorf("failed to parse time: %v", err)
		}
	}
	return Time{Time: parsedTime}, nil
}

// Short возвращает время в отображаемом формате HH:MM.
func (t Time) Short() string {
	return t.Time.Format("15:04")
}

func (t *Time) UnmarshalJSON(data []byte) error {
	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])
	parsed, err := ParseTime(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Short())
}
