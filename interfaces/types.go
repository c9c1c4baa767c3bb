// Package interfaces defines the core types shared by the flight-log decoder,
// the keychain and the key-issuing service clients.
package interfaces

import (
	"encoding/base64"
	"fmt"
)

// FeaturePoint names one independently encrypted telemetry channel of the
// flight-log format. The set is closed; the zero value is not a valid point.
type FeaturePoint int

const (
	BaseFeature FeaturePoint = iota + 1
	VisionFeature
	WaypointFeature
	AgricultureFeature
	AirLinkFeature
	AfterSalesFeature
	DJIFlyCustomFeature
	PlaintextFeature
	FlightHubFeature
	GimbalFeature
	RCFeature
	CameraFeature
	BatteryFeature
	FlySafeFeature
	SecurityFeature
)

var featurePointNames = map[FeaturePoint]string{
	BaseFeature:         "FR_Standardization_Feature_Base_1",
	VisionFeature:       "FR_Standardization_Feature_Vision_2",
	WaypointFeature:     "FR_Standardization_Feature_Waypoint_3",
	AgricultureFeature:  "FR_Standardization_Feature_Agriculture_4",
	AirLinkFeature:      "FR_Standardization_Feature_AirLink_5",
	AfterSalesFeature:   "FR_Standardization_Feature_AfterSales_6",
	DJIFlyCustomFeature: "FR_Standardization_Feature_DJIFlyCustom_7",
	PlaintextFeature:    "FR_Standardization_Feature_Plaintext_8",
	FlightHubFeature:    "FR_Standardization_Feature_FlightHub_9",
	GimbalFeature:       "FR_Standardization_Feature_Gimbal_10",
	RCFeature:           "FR_Standardization_Feature_RC_11",
	CameraFeature:       "FR_Standardization_Feature_Camera_12",
	BatteryFeature:      "FR_Standardization_Feature_Battery_13",
	FlySafeFeature:      "FR_Standardization_Feature_FlySafe_14",
	SecurityFeature:     "FR_Standardization_Feature_Security_15",
}

var featurePointsByName = func() map[string]FeaturePoint {
	m := make(map[string]FeaturePoint, len(featurePointNames))
	for fp, name := range featurePointNames {
		m[name] = fp
	}
	return m
}()

// AllFeaturePoints returns every feature point in declaration order.
func AllFeaturePoints() []FeaturePoint {
	points := make([]FeaturePoint, 0, len(featurePointNames))
	for fp := BaseFeature; fp <= SecurityFeature; fp++ {
		points = append(points, fp)
	}
	return points
}

// ParseFeaturePoint resolves a wire identifier such as
// "FR_Standardization_Feature_Base_1".
func ParseFeaturePoint(name string) (FeaturePoint, error) {
	fp, ok := featurePointsByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown feature point %q", name)
	}
	return fp, nil
}

// Valid reports whether fp belongs to the closed set.
func (fp FeaturePoint) Valid() bool {
	_, ok := featurePointNames[fp]
	return ok
}

// String returns the wire identifier of the feature point.
func (fp FeaturePoint) String() string {
	if name, ok := featurePointNames[fp]; ok {
		return name
	}
	return fmt.Sprintf("FeaturePoint(%d)", int(fp))
}

// MarshalText encodes the feature point as its wire identifier. Used for
// JSON values and JSON map keys alike.
func (fp FeaturePoint) MarshalText() ([]byte, error) {
	name, ok := featurePointNames[fp]
	if !ok {
		return nil, fmt.Errorf("invalid feature point %d", int(fp))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a wire identifier.
func (fp *FeaturePoint) UnmarshalText(text []byte) error {
	parsed, err := ParseFeaturePoint(string(text))
	if err != nil {
		return err
	}
	*fp = parsed
	return nil
}

// KeychainEntry is the key material for one feature point as issued by the
// key service. Key and IV are standard base64 at the boundary; their lengths
// are only checked when the material is used to decrypt.
type KeychainEntry struct {
	FeaturePoint FeaturePoint `json:"featurePoint"`
	AesKey       string       `json:"aesKey"`
	AesIv        string       `json:"aesIv"`
}

// NewKeychainEntry encodes raw key material into its wire shape.
func NewKeychainEntry(fp FeaturePoint, iv, key []byte) KeychainEntry {
	return KeychainEntry{
		FeaturePoint: fp,
		AesKey:       base64.StdEncoding.EncodeToString(key),
		AesIv:        base64.StdEncoding.EncodeToString(iv),
	}
}

// DecodeKey returns the raw AES key.
func (e KeychainEntry) DecodeKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(e.AesKey)
	if err != nil {
		return nil, NewEncodingError(e.FeaturePoint.String()+" aesKey", err)
	}
	return key, nil
}

// DecodeIV returns the raw AES initialization vector.
func (e KeychainEntry) DecodeIV() ([]byte, error) {
	iv, err := base64.StdEncoding.DecodeString(e.AesIv)
	if err != nil {
		return nil, NewEncodingError(e.FeaturePoint.String()+" aesIv", err)
	}
	return iv, nil
}

// EncodedKeychainEntry asks the key service for the key material of one
// feature point. The ciphertext is opaque to this side of the exchange and
// never holds plaintext key material.
type EncodedKeychainEntry struct {
	FeaturePoint  FeaturePoint `json:"featurePoint"`
	AesCiphertext string       `json:"aesCiphertext"`
}

// NewEncodedKeychainEntry wraps raw ciphertext read from a flight log.
func NewEncodedKeychainEntry(fp FeaturePoint, ciphertext []byte) EncodedKeychainEntry {
	return EncodedKeychainEntry{
		FeaturePoint:  fp,
		AesCiphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}
}

// Ciphertext returns the raw ciphertext bytes.
func (e EncodedKeychainEntry) Ciphertext() ([]byte, error) {
	ct, err := base64.StdEncoding.DecodeString(e.AesCiphertext)
	if err != nil {
		return nil, NewEncodingError(e.FeaturePoint.String()+" aesCiphertext", err)
	}
	return ct, nil
}
