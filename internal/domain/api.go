package domain

import "time"

// Health represents health check response
type Health struct {
	Status string    `json:"status"`
	Now    time.Time `json:"now"`
}

// CelestialResponse is the document returned for a sky query.
type CelestialResponse struct {
	Objects          []ObjectReport   `json:"objects"`
	Twilight         []TwilightReport `json:"twilight"`
	Sunrise          *string          `json:"sunrise"`
	Sunset           *string          `json:"sunset"`
	MoonPhaseAngle   float64          `json:"moonPhaseAngle"`
	MoonPhaseName    string           `json:"moonPhaseName"`
	MoonIllumination float64          `json:"moonIllumination"`
	NightStart       string           `json:"nightStart"`
	NightEnd         string           `json:"nightEnd"`
	NightApproximate bool             `json:"nightApproximate"`
	Location         LocationReport   `json:"location"`
	Weather          WeatherReport    `json:"weather"`
}

// ObjectReport holds the results for one tracked body.
type ObjectReport struct {
	Name           string         `json:"name"`
	Category       Category       `json:"category"`
	HourlyData     []SampleReport `json:"hourlyData"`
	AdditionalInfo SummaryReport  `json:"additionalInfo"`
}

// SampleReport is one hourly observation.
type SampleReport struct {
	Time     string  `json:"time"`
	Altitude float64 `json:"altitude"`
	Azimuth  float64 `json:"azimuth"`
}

// SummaryReport carries best viewing and rise/set times.
type SummaryReport struct {
	BestViewingTime *string `json:"bestViewingTime"`
	RiseTime        *string `json:"riseTime"`
	SetTime         *string `json:"setTime"`
}

// TwilightReport is one twilight transition.
type TwilightReport struct {
	Time  string `json:"time"`
	State int    `json:"state"`
}

// LocationReport echoes the queried location.
type LocationReport struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherReport describes observing conditions.
type WeatherReport struct {
	CurrentCloudCover int            `json:"currentCloudCover"`
	LightPollution    int            `json:"lightPollution"`
	HourlyForecast    []ForecastHour `json:"hourlyForecast"`
}

// CacheStats reports the counters of one result cache.
type CacheStats struct {
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Len       int    `json:"len"`
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Evictions int64  `json:"evictions"`
}

// ApiResponse wraps API responses
type ApiResponse struct {
	Ok    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *ApiError   `json:"error,omitempty"`
}

// ApiError represents an error response
type ApiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse creates a successful response
func SuccessResponse(data interface{}) ApiResponse {
	return ApiResponse{Ok: true, Data: data}
}

// ErrorResponse creates an error response
func ErrorResponse(code, message string) ApiResponse {
	return ApiResponse{Ok: false, Error: &ApiError{Code: code, Message: message}}
}
