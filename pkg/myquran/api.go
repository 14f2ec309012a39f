package myquran

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const (
	Host       = "api.myquran.com"
	APIVersion = "/v2"

	citiesEndpoint   = "/sholat/kota/semua"
	scheduleEndpoint = "/sholat/jadwal"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	ErrNoData = errors.New("response has no data member")
)

func CitiesPath() string {
	return APIVersion + citiesEndpoint
}

// SchedulePath is the month's schedule for a city. The month is not zero-padded.
func SchedulePath(cityID string, year, month int) string {
	return fmt.Sprintf("%s%s/%s/%d/%d", APIVersion, scheduleEndpoint, cityID, year, month)
}

// SchedulePathFor is the schedule for the month t falls in, in t's location.
func SchedulePathFor(cityID string, t time.Time) string {
	return SchedulePath(cityID, t.Year(), int(t.Month()))
}

// ID is sent as a string by some endpoints and a number by others.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("id %s is neither string nor number", data)
	}
	*id = ID(data)
	return nil
}

type City struct {
	ID       ID     `json:"id"`
	Location string `json:"lokasi"`
}

type Cities struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    []City `json:"data"`
}

// Day is one day's prayer times, as local wall-clock "HH:MM" strings.
type Day struct {
	Label   string `json:"tanggal"`
	Date    string `json:"date"`
	Imsak   string `json:"imsak"`
	Fajr    string `json:"subuh"`
	Sunrise string `json:"terbit"`
	Dhuha   string `json:"dhuha"`
	Dhuhr   string `json:"dzuhur"`
	Asr     string `json:"ashar"`
	Maghrib string `json:"maghrib"`
	Isha    string `json:"isya"`
}

type ScheduleData struct {
	ID       ID     `json:"id"`
	Location string `json:"lokasi"`
	Province string `json:"daerah"`
	Days     []Day  `json:"jadwal"`
}

type Schedule struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Request struct {
		Path string `json:"path"`
	} `json:"request"`
	Data *ScheduleData `json:"data"`
}

// DecodeCities parses the city list. A missing data member gives an empty list.
func DecodeCities(body []byte) (*Cities, error) {
	cs := &Cities{}
	if err := json.Unmarshal(body, cs); err != nil {
		return nil, fmt.Errorf("decoding cities: %w", err)
	}
	return cs, nil
}

func DecodeSchedule(body []byte) (*Schedule, error) {
	s := &Schedule{}
	if err := json.Unmarshal(body, s); err != nil {
		return nil, fmt.Errorf("decoding schedule: %w", err)
	}
	if s.Data == nil {
		return nil, fmt.Errorf("decoding schedule: %w", ErrNoData)
	}
	return s, nil
}
