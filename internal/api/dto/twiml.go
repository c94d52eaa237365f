package dto

import "encoding/xml"

// TwiML reply envelope understood by the messaging transport. The service
// sends exactly one outbound message per turn.
type MessagingResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}
