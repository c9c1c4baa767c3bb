// Command djilog decodes flight-log records and manages the keychains
// needed to decrypt them.
//
// Commands:
//
//	decode custom     - Decode plaintext Custom records
//	keychain fetch    - Request keychains from the key service
//	keychain decrypt  - Decrypt a feature-point payload and decode its Custom records
//
// Examples:
//
//	djilog decode custom --hex 00000000484100004040...
//	djilog keychain fetch --request request.json --api-key $DJI_API_KEY --cache file:///var/cache/djilog
//	djilog keychain decrypt --keychain keychain.json --feature-point FR_Standardization_Feature_DJIFlyCustom_7 --file payload.bin
package main
