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

package manager

// State is the lifecycle state of a Manager.
//
//	Unbuilt -> Building -> Ready | Failed
//	Unbuilt | Ready | Failed -> TornDown
type State int

const (
	// Unbuilt is the state of a new manager, and of a manager whose build was
	// rejected before it touched the engine
	Unbuilt State = iota
	// Building is the state while the secure context is configured
	Building
	// Ready is the state of a manager whose secure context is fully built.
	// Only a ready manager mints channels
	Ready
	// Failed is the state of a manager whose build stopped part way.
	// The partial context is kept until Teardown
	Failed
	// TornDown is the final state
	TornDown
)

func (s State) String() string {
	switch s {
	case Unbuilt:
		return "Unbuilt"
	case Building:
		return "Building"
	case Ready:
		return "Ready"
	case Failed:
		return "Failed"
	case TornDown:
		return "TornDown"
	default:
		return "Unknown"
	}
}
