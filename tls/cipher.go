// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package tls

import (
	"crypto/tls"
	"slices"
)

type keyExchange uint8

const (
	kxRSA keyExchange = iota + 1
	kxECDHE
)

type authentication uint8

const (
	authRSA authentication = iota + 1
	authECDSA
)

type encryption uint8

const (
	encAES128 encryption = iota + 1
	encAES256
	encAES128GCM
	encAES256GCM
	encCHACHA20
	enc3DES
	encRC4
)

type digest uint8

const (
	macSHA1 digest = iota + 1
	macSHA256
	macAEAD
)

// suiteAttributes carries what the OpenSSL selector syntax matches on.
type suiteAttributes struct {
	openssl string
	kx      keyExchange
	auth    authentication
	enc     encryption
	mac     digest
	bits    int
	tls12   bool
}

// preference is the base ordering of the table, strongest first.
var preference = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA,
	tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA,
	tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA,
	tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_RSA_WITH_AES_128_CBC_SHA256,
	tls.TLS_RSA_WITH_AES_256_CBC_SHA,
	tls.TLS_RSA_WITH_AES_128_CBC_SHA,
	tls.TLS_ECDHE_RSA_WITH_3DES_EDE_CBC_SHA,
	tls.TLS_RSA_WITH_3DES_EDE_CBC_SHA,
	tls.TLS_ECDHE_ECDSA_WITH_RC4_128_SHA,
	tls.TLS_ECDHE_RSA_WITH_RC4_128_SHA,
	tls.TLS_RSA_WITH_RC4_128_SHA,
}

var attributes = map[uint16]suiteAttributes{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384:       {openssl: "ECDHE-ECDSA-AES256-GCM-SHA384", kx: kxECDHE, auth: authECDSA, enc: encAES256GCM, mac: macAEAD, bits: 256, tls12: true},
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384:         {openssl: "ECDHE-RSA-AES256-GCM-SHA384", kx: kxECDHE, auth: authRSA, enc: encAES256GCM, mac: macAEAD, bits: 256, tls12: true},
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256: {openssl: "ECDHE-ECDSA-CHACHA20-POLY1305", kx: kxECDHE, auth: authECDSA, enc: encCHACHA20, mac: macAEAD, bits: 256, tls12: true},
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256:   {openssl: "ECDHE-RSA-CHACHA20-POLY1305", kx: kxECDHE, auth: authRSA, enc: encCHACHA20, mac: macAEAD, bits: 256, tls12: true},
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256:       {openssl: "ECDHE-ECDSA-AES128-GCM-SHA256", kx: kxECDHE, auth: authECDSA, enc: encAES128GCM, mac: macAEAD, bits: 128, tls12: true},
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256:         {openssl: "ECDHE-RSA-AES128-GCM-SHA256", kx: kxECDHE, auth: authRSA, enc: encAES128GCM, mac: macAEAD, bits: 128, tls12: true},
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA256:       {openssl: "ECDHE-ECDSA-AES128-SHA256", kx: kxECDHE, auth: authECDSA, enc: encAES128, mac: macSHA256, bits: 128, tls12: true},
	tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA256:         {openssl: "ECDHE-RSA-AES128-SHA256", kx: kxECDHE, auth: authRSA, enc: encAES128, mac: macSHA256, bits: 128, tls12: true},
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_CBC_SHA:          {openssl: "ECDHE-ECDSA-AES256-SHA", kx: kxECDHE, auth: authECDSA, enc: encAES256, mac: macSHA1, bits: 256},
	tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA:            {openssl: "ECDHE-RSA-AES256-SHA", kx: kxECDHE, auth: authRSA, enc: encAES256, mac: macSHA1, bits: 256},
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_CBC_SHA:          {openssl: "ECDHE-ECDSA-AES128-SHA", kx: kxECDHE, auth: authECDSA, enc: encAES128, mac: macSHA1, bits: 128},
	tls.TLS_ECDHE_RSA_WITH_AES_128_CBC_SHA:            {openssl: "ECDHE-RSA-AES128-SHA", kx: kxECDHE, auth: authRSA, enc: encAES128, mac: macSHA1, bits: 128},
	tls.TLS_RSA_WITH_AES_256_GCM_SHA384:               {openssl: "AES256-GCM-SHA384", kx: kxRSA, auth: authRSA, enc: encAES256GCM, mac: macAEAD, bits: 256, tls12: true},
	tls.TLS_RSA_WITH_AES_128_GCM_SHA256:               {openssl: "AES128-GCM-SHA256", kx: kxRSA, auth: authRSA, enc: encAES128GCM, mac: macAEAD, bits: 128, tls12: true},
	tls.TLS_RSA_WITH_AES_128_CBC_SHA256:               {openssl: "AES128-SHA256", kx: kxRSA, auth: authRSA, enc: encAES128, mac: macSHA256, bits: 128, tls12: true},
	tls.TLS_RSA_WITH_AES_256_CBC_SHA:                  {openssl: "AES256-SHA", kx: kxRSA, auth: authRSA, enc: encAES256, mac: macSHA1, bits: 256},
	tls.TLS_RSA_WITH_AES_128_CBC_SHA:                  {openssl: "AES128-SHA", kx: kxRSA, auth: authRSA, enc: encAES128, mac: macSHA1, bits: 128},
	tls.TLS_ECDHE_RSA_WITH_3DES_EDE_CBC_SHA:           {openssl: "ECDHE-RSA-DES-CBC3-SHA", kx: kxECDHE, auth: authRSA, enc: enc3DES, mac: macSHA1, bits: 112},
	tls.TLS_RSA_WITH_3DES_EDE_CBC_SHA:                 {openssl: "DES-CBC3-SHA", kx: kxRSA, auth: authRSA, enc: enc3DES, mac: macSHA1, bits: 112},
	tls.TLS_ECDHE_ECDSA_WITH_RC4_128_SHA:              {openssl: "ECDHE-ECDSA-RC4-SHA", kx: kxECDHE, auth: authECDSA, enc: encRC4, mac: macSHA1, bits: 128},
	tls.TLS_ECDHE_RSA_WITH_RC4_128_SHA:                {openssl: "ECDHE-RSA-RC4-SHA", kx: kxECDHE, auth: authRSA, enc: encRC4, mac: macSHA1, bits: 128},
	tls.TLS_RSA_WITH_RC4_128_SHA:                      {openssl: "RC4-SHA", kx: kxRSA, auth: authRSA, enc: encRC4, mac: macSHA1, bits: 128},
}

// Suite is one entry of the cipher algorithm table.
type Suite struct {
	suiteAttributes

	// ID is the IANA identifier of the suite
	ID uint16
	// Name is the IANA name, as reported by crypto/tls
	Name string
	// Insecure is set for suites crypto/tls flags as having security issues
	Insecure bool
}

// OpenSSLName returns the OpenSSL name of the suite
func (s *Suite) OpenSSLName() string {
	return s.openssl
}

// Bits returns the symmetric strength of the suite
func (s *Suite) Bits() int {
	return s.bits
}

// UsableWith reports whether the suite can be negotiated with the given protocol.
// TLS 1.3 negotiates suites the engine picks, the policy is accepted as is.
func (s *Suite) UsableWith(protocol Protocol) bool {
	switch protocol {
	case TLSv1_2, TLSv1_3:
		return true
	case SSLv3, TLSv1, TLSv1_1:
		return !s.tls12
	default:
		return false
	}
}

// CipherTable is the engine-wide cipher algorithm table. It is built once
// when the engine bootstraps and shared read-only by every secure context.
type CipherTable struct {
	suites  []*Suite
	byID    map[uint16]*Suite
	byName  map[string]*Suite
	aliases map[string]func(*Suite) bool
}

// NewCipherTable joins the given runtime suites with the OpenSSL attributes
// this package knows about. Suites without attributes, TLS 1.3 suites
// included, are left out.
func NewCipherTable(runtime ...*tls.CipherSuite) *CipherTable {
	known := make(map[uint16]*tls.CipherSuite, len(runtime))
	for _, suite := range runtime {
		known[suite.ID] = suite
	}

	table := &CipherTable{
		suites: make([]*Suite, 0, len(preference)),
		byID:   make(map[uint16]*Suite, len(preference)),
		byName: make(map[string]*Suite, 2*len(preference)),
	}

	for _, id := range preference {
		rt, ok := known[id]
		if !ok {
			continue
		}
		suite := &Suite{
			suiteAttributes: attributes[id],
			ID:              id,
			Name:            rt.Name,
			Insecure:        rt.Insecure,
		}
		table.suites = append(table.suites, suite)
		table.byID[id] = suite
		table.byName[suite.Name] = suite
		table.byName[suite.openssl] = suite
	}

	table.aliases = newAliases()
	return table
}

// Suites returns the table in base preference order
func (t *CipherTable) Suites() []*Suite {
	return slices.Clone(t.suites)
}

// Lookup returns the suite with the given IANA or OpenSSL name
func (t *CipherTable) Lookup(name string) (*Suite, bool) {
	suite, ok := t.byName[name]
	return suite, ok
}

// Suite returns the suite with the given identifier
func (t *CipherTable) Suite(id uint16) (*Suite, bool) {
	suite, ok := t.byID[id]
	return suite, ok
}

// Len returns the number of suites in the table
func (t *CipherTable) Len() int {
	return len(t.suites)
}

// isDefault follows the crypto/tls default suites rather than OpenSSL,
// RSA key exchange is left out.
func isDefault(s *Suite) bool {
	return !s.Insecure && s.kx != kxRSA
}

func isHigh(s *Suite) bool {
	switch s.enc {
	case encAES128, encAES256, encAES128GCM, encAES256GCM, encCHACHA20:
		return true
	default:
		return false
	}
}

func none(*Suite) bool { return false }

func withEnc(encs ...encryption) func(*Suite) bool {
	return func(s *Suite) bool { return slices.Contains(encs, s.enc) }
}

// newAliases returns the OpenSSL aliases understood by the selector.
// Aliases for algorithms the engine does not implement are known but match nothing.
func newAliases() map[string]func(*Suite) bool {
	aliases := map[string]func(*Suite) bool{
		"ALL":                 func(*Suite) bool { return true },
		"DEFAULT":             isDefault,
		"COMPLEMENTOFDEFAULT": func(s *Suite) bool { return !isDefault(s) },
		"COMPLEMENTOFALL":     none,
		"HIGH":                isHigh,
		"MEDIUM":              withEnc(enc3DES, encRC4),
		"kRSA":                func(s *Suite) bool { return s.kx == kxRSA },
		"RSA":                 func(s *Suite) bool { return s.kx == kxRSA },
		"aRSA":                func(s *Suite) bool { return s.auth == authRSA },
		"kECDHE":              func(s *Suite) bool { return s.kx == kxECDHE },
		"aECDSA":              func(s *Suite) bool { return s.auth == authECDSA },
		"AES":                 withEnc(encAES128, encAES256, encAES128GCM, encAES256GCM),
		"AES128":              withEnc(encAES128, encAES128GCM),
		"AES256":              withEnc(encAES256, encAES256GCM),
		"AESGCM":              withEnc(encAES128GCM, encAES256GCM),
		"CHACHA20":            withEnc(encCHACHA20),
		"3DES":                withEnc(enc3DES),
		"RC4":                 withEnc(encRC4),
		"SHA1":                func(s *Suite) bool { return s.mac == macSHA1 },
		"SHA256":              func(s *Suite) bool { return s.mac == macSHA256 },
		"SHA384":              none,
		"SSLv3":               func(s *Suite) bool { return !s.tls12 },
		"TLSv1.2":             func(s *Suite) bool { return s.tls12 },
	}

	for alias, target := range map[string]string{
		"kEECDH": "kECDHE",
		"ECDHE":  "kECDHE",
		"EECDH":  "kECDHE",
		"ECDSA":  "aECDSA",
		"SHA":    "SHA1",
		"TLSv1":  "SSLv3",
	} {
		aliases[alias] = aliases[target]
	}

	for _, unsupported := range []string{
		"LOW", "EXPORT", "aNULL", "eNULL", "NULL",
		"kDHE", "kEDH", "DH", "DHE", "EDH", "ADH", "AECDH", "aDSS", "DSS",
		"PSK", "kPSK", "aPSK", "SRP", "kSRP", "DES", "MD5", "IDEA", "SEED",
		"CAMELLIA", "CAMELLIA128", "CAMELLIA256", "ARIA", "AESCCM", "AESCCM8",
		"GOST94", "GOST89MAC", "kGOST", "aGOST",
	} {
		aliases[unsupported] = none
	}
	return aliases
}
