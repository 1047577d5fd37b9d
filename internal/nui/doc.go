// Package nui carries messages between the host and the overlay.
//
// Inbound host messages arrive as POST /nui requests carrying the envelope
// {"action": "<event>", "data": <payload>} and are published on a Bus.
// Outbound messages go through a Client, which POSTs the payload as JSON to
// <callback_url>/<event>.
package nui
