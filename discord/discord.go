package discord

import (
	"strconv"

	gotils_strconv "github.com/savsgio/gotils/strconv"
)

const (
	bitSize            = 64
	decimalBase        = 10
	maxInt64JsonLength = 22
)

// Snowflake is a Discord-style unique identifier. Serialized as a string
// to survive JSON implementations that truncate large integers.
type Snowflake int64

func toSnowflake(b []byte, s *Snowflake) error {
	if len(b) < 2 || string(b) == "null" {
		*s = 0

		return nil
	}

	i, err := strconv.ParseInt(gotils_strconv.B2S(b[1:len(b)-1]), decimalBase, bitSize)
	if err != nil {
		return err
	}

	*s = Snowflake(i)

	return nil
}

func (s *Snowflake) UnmarshalJSON(b []byte) error {
	return toSnowflake(b, s)
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	buff := make([]byte, 0, maxInt64JsonLength)
	buff = append(buff, '"')
	buff = strconv.AppendInt(buff, int64(s), decimalBase)
	buff = append(buff, '"')

	return buff, nil
}

func (s Snowflake) String() string {
	return strconv.FormatInt(int64(s), decimalBase)
}

func (s Snowflake) IsNil() bool {
	return s == 0
}
