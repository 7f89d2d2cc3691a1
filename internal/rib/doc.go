// Package rib decodes the fixed-layout binary telemetry captures ("rib"
// files) written by Recon Instruments Snow2 and Zeal Optics Transcend
// goggles.
//
// The format is reverse-engineered, not documented:
//   - a short file header, then a stream of fixed-size records
//   - Snow2 records are 32 bytes and carry a per-record Unix timestamp
//   - Transcend records are 20 bytes and carry no timestamp; the session
//     date is stored once and is synthesized as a 4-byte prefix so both
//     layouts share one record schema
//   - the first record of every capture is not a real sample
//
// Nothing is validated: any buffer decodes to something.
package rib
