// Command keyadmin manages the Shamir-split master key of the key server.
//
// Commands:
//
//	status                  - Query the unlock state of a key server
//	generate-admin          - Generate an administrator key pair
//	generate-shamir-config  - Write the admins file from administrator public keys
//	split-master-key        - Split a master key into one share file per admin
//	submit-share            - Sign and submit a share to a locked key server
//
// Example workflow:
//
//  1. Each administrator generates a key pair:
//     keyadmin generate-admin --admin-privkey-file=admin1-private.pem --admin-pubkey-file=admin1-public.pem
//
//  2. Collect the public keys into the admins file:
//     keyadmin generate-shamir-config --admin-pubkey-files=admin1-public.pem,admin2-public.pem,admin3-public.pem
//
//  3. Split the master key 2-of-3 and hand every admin their share file:
//     keyadmin split-master-key --master-key=<hex> --shamir-threshold=2
//
//  4. Start the key server with --shamir-admin-keys-file and let admins submit:
//     keyadmin submit-share --shamir-share-file=share-<admin id>.json
//
// Admin IDs are the hex SHA-256 of the PEM public key.
package main
