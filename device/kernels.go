package device

// OKL sources for the accumulate phase. Each @outer iteration walks one
// partition, offsets[part] to offsets[part+1], and writes that partition's
// partial accumulator. NPART and NBUCKET come from the preamble. Integer sums
// accumulate unsigned so overflow wraps as it does on the host.

const addIntSource = `
@kernel void addint(const int *in, const int *offsets, int *partials) {
  for (int part = 0; part < NPART; ++part; @outer) {
    for (int t = 0; t < 1; ++t; @inner) {
      unsigned int acc = 0;
      for (int i = offsets[part]; i < offsets[part + 1]; ++i) {
        acc += (unsigned int) in[i];
      }
      partials[part] = (int) acc;
    }
  }
}
`

const dpSource = `
@kernel void dp(const float *a, const float *b, const int *offsets, float *partials) {
  for (int part = 0; part < NPART; ++part; @outer) {
    for (int t = 0; t < 1; ++t; @inner) {
      float acc = 0.0f;
      for (int i = offsets[part]; i < offsets[part + 1]; ++i) {
        acc += a[i] * b[i];
      }
      partials[part] = acc;
    }
  }
}
`

const sumXorSource = `
@kernel void sumxor(const int *a, const int *b, const int *offsets, int *partials) {
  for (int part = 0; part < NPART; ++part; @outer) {
    for (int t = 0; t < 1; ++t; @inner) {
      unsigned int acc = 0;
      for (int i = offsets[part]; i < offsets[part + 1]; ++i) {
        acc += (unsigned int) (a[i] ^ b[i]);
      }
      partials[part] = (int) acc;
    }
  }
}
`

// one inner thread per bucket
const histogramSource = `
@kernel void histogram(const unsigned char *in, const int *offsets, unsigned int *partials) {
  for (int part = 0; part < NPART; ++part; @outer) {
    for (int bucket = 0; bucket < NBUCKET; ++bucket; @inner) {
      unsigned int count = 0;
      for (int i = offsets[part]; i < offsets[part + 1]; ++i) {
        if (in[i] == bucket) {
          ++count;
        }
      }
      partials[part * NBUCKET + bucket] = count;
    }
  }
}
`
