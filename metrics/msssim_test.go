package metrics

import "testing"

func TestMSSSIMIdentical(t *testing.T) {
	p := Grayscale(gradientImage(120, 68))
	score, heat := MSSSIM(p, p)
	if score < 0.9999 {
		t.Errorf("MSSSIM(x,x) = %v, want ~1", score)
	}
	gw, gh := gridDims(120, 68)
	if heat.W != gw || heat.H != gh {
		t.Errorf("heatmap grid %dx%d, want full-resolution grid %dx%d", heat.W, heat.H, gw, gh)
	}
	for i, v := range heat.Data {
		if v != 255 {
			t.Fatalf("identical-input cell %d = %d, want 255", i, v)
		}
	}
}

func TestMSSSIMMonotoneInNoise(t *testing.T) {
	ref := gradientImage(120, 68)
	refPlane := Grayscale(ref)
	prev := 2.0
	for _, sigma := range []float64{2, 5, 10, 20, 40} {
		score, _ := MSSSIM(refPlane, Grayscale(noisyCopy(ref, sigma, 7)))
		if score >= prev {
			t.Errorf("MSSSIM at sigma=%v is %v, not below previous %v", sigma, score, prev)
		}
		prev = score
	}
}

func TestMSSSIMMoreForgivingOfNoiseThanSSIM(t *testing.T) {
	// Noise hits the finest scale hardest, and that scale carries the
	// smallest weight, so MSSSIM should sit above single-scale SSIM on
	// noisy input.
	ref := gradientImage(120, 68)
	dis := noisyCopy(ref, 10, 13)
	ss, _ := SSIM(Grayscale(ref), Grayscale(dis))
	ms, _ := MSSSIM(Grayscale(ref), Grayscale(dis))
	if ms <= ss {
		t.Errorf("MSSSIM %v <= SSIM %v on high-frequency noise", ms, ss)
	}
}

func TestMSSSIMInRange(t *testing.T) {
	ref := gradientImage(120, 68)
	score, _ := MSSSIM(Grayscale(ref), Grayscale(noisyCopy(ref, 60, 99)))
	if score < 0 || score > 1 {
		t.Errorf("MSSSIM out of [0,1]: %v", score)
	}
}

func TestDiffHeatmapOrientation(t *testing.T) {
	ref := gradientImage(120, 68)
	heat := DiffHeatmap(ref, ref, 1)
	for i, v := range heat.Data {
		if v != 255 {
			t.Fatalf("identical-input diff cell %d = %d, want 255", i, v)
		}
	}
	dis := noisyCopy(ref, 20, 5)
	h1 := DiffHeatmap(ref, dis, 1)
	h8 := DiffHeatmap(ref, dis, 8)
	// Amplification pushes diff cells further from perfect quality.
	darker := 0
	for i := range h1.Data {
		if h8.Data[i] < h1.Data[i] {
			darker++
		}
	}
	if darker == 0 {
		t.Error("amplification 8 changed no cells relative to 1")
	}
}
