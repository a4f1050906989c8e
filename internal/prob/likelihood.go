package prob

import (
	"math"
	"math/cmplx"

	"github.com/diskfit/diskfit-core/internal/visdata"
)

const arcsecRad = math.Pi / 180.0 / 3600.0

// PhaseShift applies the Fourier-domain equivalent of translating the sky
// image by (dRA, dDec) arcsec to model visibilities sampled at (u, v)
// kilolambda. The shift is applied in place and returns vis for chaining.
func PhaseShift(vis []complex128, u, v []float64, dRA, dDec float64) []complex128 {
	dra := dRA * arcsecRad
	ddec := dDec * arcsecRad
	for i := range vis {
		phase := -2 * math.Pi * (u[i]*1e3*dra + v[i]*1e3*ddec)
		vis[i] *= cmplx.Rect(1, phase)
	}
	return vis
}

// ChannelLogLike scores one channel: -0.5 * sum of w * |V_data - V_model|^2
// over the channel's samples.
func ChannelLogLike(model []complex128, ch visdata.Channel) float64 {
	sum := 0.0
	for i := range model {
		dre := ch.Re[i] - real(model[i])
		dim := ch.Im[i] - imag(model[i])
		sum += ch.Weight[i] * (dre*dre + dim*dim)
	}
	return -0.5 * sum
}
