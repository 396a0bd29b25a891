/*
Copyright © 2026 the PoreNet authors.
This file is part of PoreNet.

PoreNet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PoreNet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PoreNet.  If not, see <http://www.gnu.org/licenses/>.
*/

package porenet

import (
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// variateGenerator supplies all of the random variates used for stochastic
// radius and wettability assignment. Every draw comes from a single seeded
// source, so a fixed seed yields an identical simulation trajectory.
type variateGenerator struct {
	src *rand.Rand
}

func newVariateGenerator(seed uint64) *variateGenerator {
	return &variateGenerator{src: rand.New(rand.NewSource(seed))}
}

// uniform returns a real number in [a, b).
func (v *variateGenerator) uniform(a, b float64) float64 {
	if b <= a {
		return a
	}
	return distuv.Uniform{Min: a, Max: b, Src: v.src}.Rand()
}

// rayleigh returns a Rayleigh variate truncated to [min, max]. A Rayleigh
// distribution with scale σ is a Weibull with shape 2 and scale σ√2.
func (v *variateGenerator) rayleigh(min, max, sigma float64) float64 {
	if max <= min {
		return min
	}
	d := distuv.Weibull{K: 2, Lambda: sigma * math.Sqrt2, Src: v.src}
	for {
		x := min + d.Rand()
		if x <= max {
			return x
		}
	}
}

// triangular returns a triangular variate on [a, b] with mode c.
func (v *variateGenerator) triangular(a, b, c float64) float64 {
	if b <= a {
		return a
	}
	if c < a {
		c = a
	}
	if c > b {
		c = b
	}
	return distuv.NewTriangle(a, b, c, v.src).Rand()
}

// normal returns a normal variate with mean mu and standard deviation sigma,
// truncated to [min, max].
func (v *variateGenerator) normal(min, max, mu, sigma float64) float64 {
	if max <= min {
		return min
	}
	d := distuv.Normal{Mu: mu, Sigma: sigma, Src: v.src}
	for {
		x := d.Rand()
		if x >= min && x <= max {
			return x
		}
	}
}

// weibull returns a Weibull variate with shape k and scale lambda,
// rescaled to [min, max].
func (v *variateGenerator) weibull(min, max, k, lambda float64) float64 {
	if max <= min {
		return min
	}
	d := distuv.Weibull{K: k, Lambda: lambda, Src: v.src}
	for {
		x := min + (max-min)*d.Rand()
		if x >= min && x <= max {
			return x
		}
	}
}
